package usercontext

// Locals keys shared by middlewares and controllers.
const (
	KeyUserContext = "USER_CONTEXT"
	KeyUserAPI     = "user_api_client"
)

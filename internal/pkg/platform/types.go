package platform

// Organization is a Platform organization.
type Organization struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Currency *string `json:"currency"`
	Timezone *string `json:"timezone"`
	Created  string  `json:"created"`
}

// Location is a venue of an organization.
type Location struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Latitude       *float64 `json:"latitude,omitempty"`
	Longitude      *float64 `json:"longitude,omitempty"`
	PhoneNumber    string   `json:"phoneNumber,omitempty"`
	Country        string   `json:"country,omitempty"`
	Locality       string   `json:"locality,omitempty"`
	Region         string   `json:"region,omitempty"`
	PostalCode     string   `json:"postalCode,omitempty"`
	Slug           string   `json:"slug,omitempty"`
	StreetAddress  string   `json:"streetAddress,omitempty"`
	StreetAddress2 string   `json:"streetAddress2,omitempty"`
	Timezone       string   `json:"timezone,omitempty"`
}

// Customer is a loyalty member of an organization.
type Customer struct {
	ID                   string `json:"id"`
	Email                string `json:"email"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	PhoneNumber          string `json:"phoneNumber"`
	DOB                  string `json:"dob,omitempty"`
	Gender               string `json:"gender,omitempty"`
	HasAgreedToMarketing bool   `json:"hasAgreedToMarketing"`
	CreatedAt            string `json:"createdAt"`
	UpdatedAt            string `json:"updatedAt"`
}

// CustomerList is a named customer segment.
type CustomerList struct {
	ID          string `json:"id"`
	CreatedAt   string `json:"createdAt"`
	MemberCount int    `json:"memberCount"`
	Name        string `json:"name"`
}

// ListMember is a customer inside a customer list.
type ListMember struct {
	ID          string  `json:"id"`
	AddedAt     string  `json:"addedAt"`
	Email       string  `json:"email"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
}

// WebhookSubscription is an existing webhook registration.
type WebhookSubscription struct {
	Events []string `json:"events"`
	Ref    string   `json:"ref"`
	URL    string   `json:"url"`
}

// WebhookSubscriptionRequest registers a webhook.
type WebhookSubscriptionRequest struct {
	Events []string `json:"events"`
	Secret string   `json:"secret"`
	URL    string   `json:"url"`
}

// CustomerQuery filters customer listings.
type CustomerQuery struct {
	Email string
}

// ListOptions controls paging of list operations. With AutoPage the client
// follows next-page cursors until the listing is exhausted.
type ListOptions struct {
	After    string
	AutoPage bool
}

// ListResponse is one page, or all pages when AutoPage was requested. Cursor
// is empty when there is no further page.
type ListResponse[T any] struct {
	Items  []T    `json:"items"`
	Cursor string `json:"cursor,omitempty"`
}

// PointsAdjustment is the body of a balance adjustment.
type PointsAdjustment struct {
	Amount float64 `json:"amount"`
	Notes  string  `json:"notes"`
}

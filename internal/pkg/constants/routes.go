package constants

const (
	StatusRoute          = "/status"
	MetricsRoute         = "/metrics"
	WebhookMetricsRoute  = "/metrics/webhooks"
	LoginRoute           = "/auth"
	LoginCallbackRoute   = "/auth/callback"
	LogoutRoute          = "/auth/logout"
	DocsBasePath         = "/docs/api/"
)

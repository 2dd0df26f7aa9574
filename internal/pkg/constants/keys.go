package constants

const (
	ViperHTTPAddrKey        = "http.addr"
	ViperCORSOriginsKey     = "http.cors_origins"
	ViperPostgresDSNKey     = "postgres.dsn"
	ViperRefreshIntervalKey = "feed.refresh_interval"
	ViperSecretKey          = "auth.secret"
	ViperLogLevelKey        = "log.level"
	ViperNavHistoryKey      = "navigation.history"
	ViperScreenIdleTTLKey   = "screen.idle_ttl"
)

const (
	CookieKeySecretToken = "admin_token"
	CtxKeyRequestID      = "request_id"
)

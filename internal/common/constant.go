package common

const (
	// AuthorizationHeader carries the bearer access token on inbound requests.
	AuthorizationHeader = "Authorization"

	// BearerPrefix is the expected scheme prefix of the Authorization header.
	BearerPrefix = "Bearer "

	// UserIDHeader is the trusted identity header the gateway injects into
	// requests it forwards downstream.
	UserIDHeader = "X-User-Id"
)

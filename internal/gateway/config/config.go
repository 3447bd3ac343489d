// Package config handles configuration for the API gateway, including
// defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for the gateway.
//
// Fields:
//   - EndpointAddr: bind address for the public HTTP endpoint.
//   - SecretKey: HMAC secret for verifying JWTs. Must match the user
//     service; do not use the development default in production.
//   - UserServiceURL / WebsocketServiceURL: downstream base URLs.
//   - ExemptPathPrefixes: request paths forwarded without authentication.
type Config struct {
	EndpointAddr        string
	SecretKey           string
	UserServiceURL      string
	WebsocketServiceURL string
	ExemptPathPrefixes  []string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":8080"
	c.SecretKey = "secretKey"
	c.UserServiceURL = "http://user-service:8081"
	c.WebsocketServiceURL = "http://websocket-service:8082"
	c.ExemptPathPrefixes = []string{
		"/api/auth/login",
		"/api/auth/register",
		"/api/auth/refresh",
		"/api/auth/logout",
		"/health",
		"/actuator",
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJSON(cfg)
	parseFlags(cfg)
	return cfg
}

package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/chatapp/internal/flagx"
)

// jsonConfig is the DTO for the optional JSON configuration file.
type jsonConfig struct {
	EndpointAddr        string   `json:"endpoint_addr"`
	SecretKey           string   `json:"secret_key"`
	UserServiceURL      string   `json:"user_service_url"`
	WebsocketServiceURL string   `json:"websocket_service_url"`
	ExemptPathPrefixes  []string `json:"exempt_path_prefixes"`
}

// parseJSON overlays values from the JSON file named by the -c/-config
// flags, if any. Missing file path means no overlay. Unreadable or invalid
// JSON panics: a requested config file that cannot be used is fatal.
func parseJSON(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &jsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.UserServiceURL != "" {
		config.UserServiceURL = c.UserServiceURL
	}
	if c.WebsocketServiceURL != "" {
		config.WebsocketServiceURL = c.WebsocketServiceURL
	}
	if len(c.ExemptPathPrefixes) > 0 {
		config.ExemptPathPrefixes = c.ExemptPathPrefixes
	}
}

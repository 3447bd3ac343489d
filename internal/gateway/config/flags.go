package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/chatapp/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-s string   JWT HMAC secret key
//	-u string   user service base URL
//	-w string   websocket service base URL
//
// Arguments are first filtered through flagx.FilterArgs so this component
// only sees the flags it owns.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-u", "-w"})

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.UserServiceURL, "u", config.UserServiceURL, "user service base URL")
	fs.StringVar(&config.WebsocketServiceURL, "w", config.WebsocketServiceURL, "websocket service base URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

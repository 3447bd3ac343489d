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
//	-a string     HTTP bind address (e.g., ":8081")
//	-d string     PostgreSQL DSN
//	-s string     JWT HMAC secret key
//	-t duration   access token validity (e.g., "15m")
//	-r duration   refresh token validity (e.g., "168h")
//	-i duration   expired-token cleanup interval (e.g., "1h")
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 avatars bucket
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Duration flags default to the values already in config, so an absent
// flag keeps a JSON-overlay value exactly, down to sub-minute precision.
// Arguments are first filtered through flagx.FilterArgs so this component
// only sees the flags it owns.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-r", "-i", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("userservice", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.DurationVar(&config.AccessTokenTTL, "t", config.AccessTokenTTL, "access token validity")
	fs.DurationVar(&config.RefreshTokenTTL, "r", config.RefreshTokenTTL, "refresh token validity")
	fs.DurationVar(&config.CleanupInterval, "i", config.CleanupInterval, "expired-token cleanup interval")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 avatars bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

package config

import (
	"flag"
	"os"
	"time"

	"github.com/avicente/cardholder/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-m string   storage driver (dynamo, postgres, memory)
//	-d string   PostgreSQL DSN
//	-t string   DynamoDB profile table
//	-b string   avatars bucket name
//	-q string   card request queue URL
//	-n string   notifications queue URL
//	-s string   secret name
//	-l int      token TTL, seconds
//	-g string   AWS region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-u string   S3 root user
//	-p string   S3 root password
//	-x          attach provider error detail to failure responses
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. The TTL flag
// is accepted as an integer in seconds and converted to a time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-m", "-d", "-t", "-b", "-q", "-n", "-s", "-l", "-g", "-e", "-u", "-p", "-x"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.StorageDriver, "m", config.StorageDriver, "storage driver (dynamo, postgres, memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.ProfileTable, "t", config.ProfileTable, "profile table name")
	fs.StringVar(&config.AvatarsBucket, "b", config.AvatarsBucket, "avatars bucket name")
	fs.StringVar(&config.CardRequestQueueURL, "q", config.CardRequestQueueURL, "card request queue URL")
	fs.StringVar(&config.NotificationsQueueURL, "n", config.NotificationsQueueURL, "notifications queue URL")
	fs.StringVar(&config.SecretName, "s", config.SecretName, "secret name")

	tokenTTL := fs.Int("l", int(config.TokenTTL.Seconds()), "token TTL (in seconds)")

	fs.StringVar(&config.AWSRegion, "g", config.AWSRegion, "AWS region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.BoolVar(&config.DebugErrors, "x", config.DebugErrors, "attach error detail to failure responses")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenTTL = time.Duration(*tokenTTL) * time.Second
}

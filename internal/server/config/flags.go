package config

import (
	"flag"
	"os"
	"time"

	"github.com/skomarov/boardkeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-i int      retention sweep interval, minutes
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-k string   AI provider API key
//	-m string   AI model name
//	-q int      AI daily quota per caller
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-u", "-p", "-b", "-g", "-e", "-k", "-m", "-q"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")

	retentionInterval := fs.Int("i", int(config.RetentionInterval.Minutes()), "retention sweep interval (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 root bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 root region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.AIAPIKey, "k", config.AIAPIKey, "AI provider API key")
	fs.StringVar(&config.AIModel, "m", config.AIModel, "AI model")
	aiDailyQuota := fs.Int("q", config.AIDailyQuota, "AI daily quota per caller")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.RetentionInterval = time.Duration(*retentionInterval) * time.Minute
	config.AIDailyQuota = *aiDailyQuota
}

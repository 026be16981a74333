package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// parseEnv overlays values from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win over
// it per godotenv semantics.
//
// Recognized variables:
//
//	HTTP_ADDR, DATABASE_DSN,
//	S3_ROOT_USER, S3_ROOT_PASSWORD, S3_BUCKET, S3_REGION, S3_BASE_ENDPOINT,
//	RETENTION_INTERVAL, ROOM_TTL, ASSET_TTL, SNAPSHOT_TTL, ORPHAN_GRACE
//	  (Go duration strings, e.g. "720h"),
//	AI_API_KEY, AI_BASE_URL, AI_MODEL, AI_DAILY_QUOTA.
func parseEnv(config *Config) {
	_ = godotenv.Load()

	setString(&config.EndpointAddrHTTP, os.Getenv("HTTP_ADDR"))
	setString(&config.DatabaseDSN, os.Getenv("DATABASE_DSN"))
	setString(&config.S3RootUser, os.Getenv("S3_ROOT_USER"))
	setString(&config.S3RootPassword, os.Getenv("S3_ROOT_PASSWORD"))
	setString(&config.S3Bucket, os.Getenv("S3_BUCKET"))
	setString(&config.S3Region, os.Getenv("S3_REGION"))
	setString(&config.S3BaseEndpoint, os.Getenv("S3_BASE_ENDPOINT"))

	setEnvDuration(&config.RetentionInterval, "RETENTION_INTERVAL")
	setEnvDuration(&config.RoomTTL, "ROOM_TTL")
	setEnvDuration(&config.AssetTTL, "ASSET_TTL")
	setEnvDuration(&config.SnapshotTTL, "SNAPSHOT_TTL")
	setEnvDuration(&config.OrphanGrace, "ORPHAN_GRACE")

	setString(&config.AIAPIKey, os.Getenv("AI_API_KEY"))
	setString(&config.AIBaseURL, os.Getenv("AI_BASE_URL"))
	setString(&config.AIModel, os.Getenv("AI_MODEL"))
	if v := os.Getenv("AI_DAILY_QUOTA"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.AIDailyQuota = n
		}
	}
}

func setEnvDuration(dst *time.Duration, name string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	if d, err := time.ParseDuration(v); err == nil && d > 0 {
		*dst = d
	}
}

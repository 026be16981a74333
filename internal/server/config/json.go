package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/skomarov/boardkeeper/internal/flagx"
	"github.com/skomarov/boardkeeper/internal/timex"
)

// JsonConfig is the DTO for JSON configuration files. Interval fields use
// timex.Duration so both string values such as "720h" and integer
// nanoseconds parse.
type JsonConfig struct {
	EndpointAddrHTTP  string         `json:"endpoint_addr_http"`
	DatabaseDSN       string         `json:"database_dsn"`
	S3RootUser        string         `json:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
	RetentionInterval timex.Duration `json:"retention_interval"`
	RoomTTL           timex.Duration `json:"room_ttl"`
	AssetTTL          timex.Duration `json:"asset_ttl"`
	SnapshotTTL       timex.Duration `json:"snapshot_ttl"`
	OrphanGrace       timex.Duration `json:"orphan_grace"`
	AIAPIKey          string         `json:"ai_api_key"`
	AIBaseURL         string         `json:"ai_base_url"`
	AIModel           string         `json:"ai_model"`
	AIDailyQuota      int            `json:"ai_daily_quota"`
}

// parseJson overlays values from the JSON file named by -c/-config onto the
// Config. Absent file path means no overlay; unreadable or invalid JSON
// panics, a broken config file should stop startup. Zero-valued fields in
// the file leave the current value in place, so partial files work.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JSONConfigPath()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setDuration(&config.RetentionInterval, time.Duration(c.RetentionInterval.Duration))
	setDuration(&config.RoomTTL, time.Duration(c.RoomTTL.Duration))
	setDuration(&config.AssetTTL, time.Duration(c.AssetTTL.Duration))
	setDuration(&config.SnapshotTTL, time.Duration(c.SnapshotTTL.Duration))
	setDuration(&config.OrphanGrace, time.Duration(c.OrphanGrace.Duration))
	setString(&config.AIAPIKey, c.AIAPIKey)
	setString(&config.AIBaseURL, c.AIBaseURL)
	setString(&config.AIModel, c.AIModel)
	if c.AIDailyQuota > 0 {
		config.AIDailyQuota = c.AIDailyQuota
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

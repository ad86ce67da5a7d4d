package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/icarus/internal/flagx"
	"github.com/dmitrijs2005/icarus/internal/timex"
)

// JsonConfig is the on-disk shape of the optional configuration file.
// Durations accept "24h"-style strings or integer nanoseconds. Keys that are
// absent (or empty) leave the current value untouched.
type JsonConfig struct {
	EndpointAddrHTTP        string          `json:"endpoint_addr_http"`
	DatabaseDSN             string          `json:"database_dsn"`
	SecretKey               string          `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	UploadDir               string          `json:"upload_dir"`
	MaxUploadSize           int64           `json:"max_upload_size"`
	StaticDir               *string         `json:"static_dir"`
	DemoUserPassword        string          `json:"demo_user_password"`
	S3RootUser              string          `json:"s3_root_user"`
	S3RootPassword          string          `json:"s3_root_password"`
	S3Bucket                string          `json:"s3_bucket"`
	S3Region                string          `json:"s3_region"`
	S3BaseEndpoint          string          `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c / -config.
// Without the flag nothing is loaded. An unreadable or invalid file panics:
// the server must not start on a half-applied configuration.
func parseJson(config *Config, osArgs []string) {
	jsonConfigFile := flagx.ConfigFile(osArgs)
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	setString(&config.UploadDir, c.UploadDir)
	if c.MaxUploadSize > 0 {
		config.MaxUploadSize = c.MaxUploadSize
	}
	if c.StaticDir != nil {
		config.StaticDir = *c.StaticDir
	}
	setString(&config.DemoUserPassword, c.DemoUserPassword)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

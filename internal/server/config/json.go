package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/avicente/cardholder/internal/flagx"
	"github.com/avicente/cardholder/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON
// unmarshalling. It uses timex.Duration for the TTL field, which allows
// parsing both string values such as "1h" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct. A JSON config file is expected to be complete: all fields are
// copied over.
type JsonConfig struct {
	EndpointAddr          string         `json:"endpoint_addr"`
	StorageDriver         string         `json:"storage_driver"`
	DatabaseDSN           string         `json:"database_dsn"`
	ProfileTable          string         `json:"profile_table"`
	AvatarsBucket         string         `json:"avatars_bucket"`
	CardRequestQueueURL   string         `json:"card_request_queue_url"`
	NotificationsQueueURL string         `json:"notifications_queue_url"`
	SecretName            string         `json:"secret_name"`
	TokenTTL              timex.Duration `json:"token_ttl"`
	AWSRegion             string         `json:"aws_region"`
	S3BaseEndpoint        string         `json:"s3_base_endpoint"`
	S3RootUser            string         `json:"s3_root_user"`
	S3RootPassword        string         `json:"s3_root_password"`
	DebugErrors           bool           `json:"debug_errors"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags; when neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.StorageDriver = c.StorageDriver
	config.DatabaseDSN = c.DatabaseDSN
	config.ProfileTable = c.ProfileTable
	config.AvatarsBucket = c.AvatarsBucket
	config.CardRequestQueueURL = c.CardRequestQueueURL
	config.NotificationsQueueURL = c.NotificationsQueueURL
	config.SecretName = c.SecretName
	config.TokenTTL = time.Duration(c.TokenTTL.Duration)
	config.AWSRegion = c.AWSRegion
	config.S3BaseEndpoint = c.S3BaseEndpoint
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.DebugErrors = c.DebugErrors
}

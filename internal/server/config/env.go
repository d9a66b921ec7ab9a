package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "FLEETD_"

// parseEnv overlays FLEETD_* variables. Keys are the JSON names upper-cased,
// for example FLEETD_DATABASE_DSN.
func parseEnv(cfg *Config, environ func() []string) error {
	k := koanf.New(".")

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, v string) (string, any) {
			return strings.ToLower(strings.TrimPrefix(key, envPrefix)), strings.TrimSpace(v)
		},
		EnvironFunc: environ,
	}), nil)
	if err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	for key, dst := range map[string]*string{
		"endpoint_addr_http": &cfg.EndpointAddrHTTP,
		"api_prefix":         &cfg.APIPrefix,
		"endpoint_addr_grpc": &cfg.EndpointAddrGRPC,
		"database_dsn":       &cfg.DatabaseDSN,
		"secret_key":         &cfg.SecretKey,
		"s3_root_user":       &cfg.S3RootUser,
		"s3_root_password":   &cfg.S3RootPassword,
		"s3_bucket":          &cfg.S3Bucket,
		"s3_region":          &cfg.S3Region,
		"s3_base_endpoint":   &cfg.S3BaseEndpoint,
		"log_level":          &cfg.LogLevel,
		"log_format":         &cfg.LogFormat,
	} {
		if k.Exists(key) {
			*dst = k.String(key)
		}
	}

	for key, dst := range map[string]*time.Duration{
		"access_token_validity_duration": &cfg.AccessTokenValidityDuration,
		"reset_token_validity_duration":  &cfg.ResetTokenValidityDuration,
		"presign_validity_duration":      &cfg.PresignValidityDuration,
	} {
		if !k.Exists(key) {
			continue
		}
		d, err := time.ParseDuration(k.String(key))
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, strings.ToUpper(key), err)
		}
		*dst = d
	}
	return nil
}

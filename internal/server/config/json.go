package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/fleetconsole/internal/flagx"
	"github.com/dmitrijs2005/fleetconsole/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Duration fields accept
// both strings such as "15m" and integer nanoseconds. Absent fields keep
// their current value.
type JsonConfig struct {
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	APIPrefix                   *string         `json:"api_prefix"`
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	ResetTokenValidityDuration  *timex.Duration `json:"reset_token_validity_duration"`
	S3RootUser                  *string         `json:"s3_root_user"`
	S3RootPassword              *string         `json:"s3_root_password"`
	S3Bucket                    *string         `json:"s3_bucket"`
	S3Region                    *string         `json:"s3_region"`
	S3BaseEndpoint              *string         `json:"s3_base_endpoint"`
	PresignValidityDuration     *timex.Duration `json:"presign_validity_duration"`
	LogLevel                    *string         `json:"log_level"`
	LogFormat                   *string         `json:"log_format"`
}

// parseJson overlays values from the file given with -c or -config.
// Without either flag nothing is loaded.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	for dst, v := range map[*string]*string{
		&cfg.EndpointAddrHTTP: jc.EndpointAddrHTTP,
		&cfg.APIPrefix:        jc.APIPrefix,
		&cfg.EndpointAddrGRPC: jc.EndpointAddrGRPC,
		&cfg.DatabaseDSN:      jc.DatabaseDSN,
		&cfg.SecretKey:        jc.SecretKey,
		&cfg.S3RootUser:       jc.S3RootUser,
		&cfg.S3RootPassword:   jc.S3RootPassword,
		&cfg.S3Bucket:         jc.S3Bucket,
		&cfg.S3Region:         jc.S3Region,
		&cfg.S3BaseEndpoint:   jc.S3BaseEndpoint,
		&cfg.LogLevel:         jc.LogLevel,
		&cfg.LogFormat:        jc.LogFormat,
	} {
		if v != nil {
			*dst = *v
		}
	}

	if jc.AccessTokenValidityDuration != nil {
		cfg.AccessTokenValidityDuration = jc.AccessTokenValidityDuration.Duration
	}
	if jc.ResetTokenValidityDuration != nil {
		cfg.ResetTokenValidityDuration = jc.ResetTokenValidityDuration.Duration
	}
	if jc.PresignValidityDuration != nil {
		cfg.PresignValidityDuration = jc.PresignValidityDuration.Duration
	}
	return nil
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "FLEET_"

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
		"api_base_url":         &cfg.APIBaseURL,
		"status_endpoint_addr": &cfg.StatusEndpointAddr,
		"data_dir":             &cfg.DataDir,
		"log_level":            &cfg.LogLevel,
		"log_format":           &cfg.LogFormat,
	} {
		if k.Exists(key) {
			*dst = k.String(key)
		}
	}

	for key, dst := range map[string]*time.Duration{
		"request_timeout":       &cfg.RequestTimeout,
		"online_check_interval": &cfg.OnlineCheckInterval,
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

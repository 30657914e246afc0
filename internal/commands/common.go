package commands

import (
	"context"
	"fmt"
	"log"

	"dailybriefing/internal/config"
	"dailybriefing/internal/logging"
	"dailybriefing/internal/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
)

var (
	// AppVersion is set from main at startup
	AppVersion = "0.0.0-dev"

	// ConfigFile is an optional YAML/TOML/JSON config file; env vars take precedence
	ConfigFile string
)

// newViper builds the viper instance used for configuration
func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// loadConfig reads configuration and initializes logging. It does not validate.
func loadConfig() (*config.Config, error) {
	v, err := newViper(ConfigFile)
	if err != nil {
		return nil, err
	}

	cfg := config.Read(v)
	logging.Init(cfg.IsProduction())
	log.Printf("📋 Configuration loaded (model: %s, mail: %s, env: %s)", cfg.ModelID, cfg.Mail.Provider, cfg.Environment)
	return cfg, nil
}

// pushMetrics pushes one-shot run metrics when a Pushgateway is configured
func pushMetrics(ctx context.Context, cfg *config.Config, g prometheus.Gatherer) {
	if cfg.PushgatewayURL == "" {
		return
	}
	if err := services.PushMetrics(ctx, cfg.PushgatewayURL, g); err != nil {
		log.Printf("⚠️  [METRICS] Failed to push to %s: %v", cfg.PushgatewayURL, err)
		return
	}
	log.Printf("📊 [METRICS] Pushed run metrics to %s", cfg.PushgatewayURL)
}

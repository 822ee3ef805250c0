package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/steemkit/steembridge/pkg/log"
	"github.com/steemkit/steembridge/pkg/steem"
)

const (
	configDirPathEnv = "STEEMBRIDGE_CONFIG_DIR"
	storageFileName  = "storage.db"
)

// Config represents the overall application configuration
type Config struct {
	steem       steem.Config
	log         log.Config
	metricsAddr string
	configDir   string

	// dotEnvErr is set when <configDir>/.env could not be loaded. It is
	// reported once a logger exists.
	dotEnvErr error
}

type appEnv struct {
	MetricsAddr string `env:"STEEMBRIDGE_METRICS_ADDR"`
}

// LoadConfig loads <config dir>/.env into the environment and builds the
// configuration from it. Variables already set take precedence over the file.
func LoadConfig() (*Config, error) {
	configDir, err := configDirPath()
	if err != nil {
		return nil, err
	}

	conf := Config{configDir: configDir}
	if err := godotenv.Load(filepath.Join(configDir, ".env")); err != nil {
		conf.dotEnvErr = err
	}

	if err := cleanenv.ReadEnv(&conf.log); err != nil {
		return nil, fmt.Errorf("failed to read log config: %w", err)
	}
	if _, err := log.ParseLevel(string(conf.log.Level)); err != nil {
		return nil, err
	}

	var env appEnv
	if err := cleanenv.ReadEnv(&env); err != nil {
		return nil, fmt.Errorf("failed to read env: %w", err)
	}
	conf.metricsAddr = env.MetricsAddr

	conf.steem, err = steem.LoadConfig()
	if err != nil {
		return nil, err
	}

	return &conf, nil
}

func (c *Config) storagePath() (string, error) {
	if err := os.MkdirAll(c.configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return filepath.Join(c.configDir, storageFileName), nil
}

func configDirPath() (string, error) {
	if customDir := os.Getenv(configDirPathEnv); customDir != "" {
		return customDir, nil
	}

	userConfDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(userConfDir, "steembridge"), nil
}

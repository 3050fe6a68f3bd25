package config

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"awshelpers/pkg/logging"
	"awshelpers/pkg/progress"
	"awshelpers/pkg/storage"
)

type Config struct {
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	Region          string `env:"AWS_REGION" envDefault:"us-east-1"`
	EndpointURL     string `env:"S3_ENDPOINT_URL"`
	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string `env:"LOG_FORMAT" envDefault:"text"`
	ShowProgress    bool   `env:"SHOW_PROGRESS" envDefault:"true"`
}

// Load reads the given dotenv files, or ./.env if none are given, and then
// parses the environment. Variables already set are not overridden.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil {
			slog.Debug("no .env file found, continuing with environment variables")
		}
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("error loading env files %v: %w", envFiles, err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	if cfg.EndpointURL != "" && (cfg.AccessKeyID == "" || cfg.SecretAccessKey == "") {
		slog.Warn("S3_ENDPOINT_URL is set, but AWS_ACCESS_KEY_ID or AWS_SECRET_ACCESS_KEY are missing")
	}

	return &cfg, nil
}

func (c *Config) Storage() storage.Config {
	return storage.Config{
		AccessKeyID:     c.AccessKeyID,
		SecretAccessKey: c.SecretAccessKey,
		Region:          c.Region,
		Endpoint:        c.EndpointURL,
	}
}

// ClientOptions returns the logger and progress options for a storage.Client,
// both writing to w.
func (c *Config) ClientOptions(w io.Writer) ([]storage.Option, error) {
	logger, err := logging.New(w, c.LogLevel, c.LogFormat)
	if err != nil {
		return nil, err
	}

	factory := progress.Factory(progress.Discard)
	if c.ShowProgress {
		factory = progress.Bar(w)
	}

	return []storage.Option{
		storage.WithLogger(logger),
		storage.WithProgress(factory),
	}, nil
}

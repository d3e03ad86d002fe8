package config

import "github.com/caarlos0/env/v6"

type Config struct {
	// Port the HTTP API listens on
	Port string `env:"PORT" envDefault:"5250"`

	// Path to the sqlite database file
	DBPath string `env:"DB_PATH" envDefault:"database/estateview.db"`

	// Log file path; empty logs to stdout only
	LogFile string `env:"LOG_FILE"`

	// Log rotation limits, used when LogFile is set
	LogMaxSizeMB  int `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups int `env:"LOG_MAX_BACKUPS" envDefault:"3"`

	Analytics struct {
		// Default number of days covered by view analytics
		WindowDays int `env:"ANALYTICS_WINDOW_DAYS" envDefault:"30"`
	}

	CORS struct {
		// Comma-separated list of allowed origins
		AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

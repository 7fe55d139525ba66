package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DotEnvPath is the optional dotenv file read before environment overrides
var DotEnvPath = ".env"

// loadFromEnv overrides configuration with environment variables.
// Values from the dotenv file never replace variables already set in the process.
func loadFromEnv(config *Config) error {
	if err := godotenv.Load(DotEnvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", DotEnvPath, err)
	}

	if err := env.Parse(config); err != nil {
		return err
	}
	return nil
}

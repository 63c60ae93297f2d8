// Package config reads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	defaultAddr     = ":2222"
	defaultHostKey  = "host_key"
	defaultMapsDir  = "assets/maps"
	defaultRulesDir = "assets/rules"
)

// Config holds the server's runtime options.
type Config struct {
	Addr      string
	HostKey   string
	MapsDir   string
	RulesDir  string
	Telemetry bool
}

// Load reads a .env file if one exists and then the environment. A missing
// .env file is not an error; the variables may be set directly.
func Load(files ...string) Config {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("Note: .env file not loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables alone.
func FromEnv() Config {
	cfg := Config{
		Addr:     envOr("TILEMASK_ADDR", defaultAddr),
		HostKey:  envOr("TILEMASK_HOST_KEY", defaultHostKey),
		MapsDir:  envOr("TILEMASK_MAPS_DIR", defaultMapsDir),
		RulesDir: envOr("TILEMASK_RULES_DIR", defaultRulesDir),
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}
	if v, err := strconv.ParseBool(os.Getenv("TILEMASK_TELEMETRY")); err == nil {
		cfg.Telemetry = v
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

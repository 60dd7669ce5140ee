package main

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"partial-trueskill/server/ladder"
	"partial-trueskill/server/trueskill"
)

// Config is everything main reads from the environment.
type Config struct {
	Port        string
	Store       string // postgres | memory
	DatabaseURL string
	Debug       bool
	Ladder      ladder.Config
}

// loadConfig reads the environment and validates the result.
func loadConfig() (Config, error) {
	cfg, err := readConfig()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readConfig() (Config, error) {
	def := ladder.DefaultConfig()
	cfg := Config{
		Port:        getenv("PORT", "8080"),
		Store:       strings.ToLower(getenv("STORE", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Debug:       asBool(os.Getenv("DEBUG")),
	}
	params, err := trueskill.NewParameters(
		floatDef(os.Getenv("TRUESKILL_BETA"), def.Parameters.Beta()),
		floatDef(os.Getenv("TRUESKILL_TAU"), def.Parameters.Tau()),
	)
	if err != nil {
		return Config{}, err
	}
	cfg.Ladder = ladder.Config{
		Parameters:      params,
		DefaultMean:     floatDef(os.Getenv("DEFAULT_MEAN"), def.DefaultMean),
		DefaultVariance: floatDef(os.Getenv("DEFAULT_VARIANCE"), def.DefaultVariance),
		AutoRegister:    asBool(os.Getenv("AUTO_REGISTER")),
		Debug:           cfg.Debug,
	}

	return cfg, nil
}

func (c Config) validate() error {
	switch c.Store {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("missing required env var DATABASE_URL (or set STORE=memory)")
		}
	default:
		return errors.Errorf("unknown STORE %q", c.Store)
	}
	return nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func floatDef(s string, def float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("invalid float %q, using default %v", s, def)
		return def
	}
	return f
}

func asBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	default:
		return false
	}
}

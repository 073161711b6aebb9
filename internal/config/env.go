package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Environment variables read after .env has been loaded
const (
	EnvStrategy  = "BOOKLINK_STRATEGY"
	EnvWorkers   = "BOOKLINK_WORKERS"
	EnvHistoryDB = "BOOKLINK_HISTORY_DB"
)

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvStrategy)); v != "" {
		c.Strategy = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDB)); v != "" {
		c.HistoryDB = v
	}
	return nil
}

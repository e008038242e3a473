package main

import (
	"os"

	"github.com/rogpeppe/rjson"
)

type config struct {
	Address string `json:"address"`
	Debug   bool   `json:"debug"`
	LogPath string `json:"log_path"`

	// Requests per second; zero means unlimited.
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst"`

	// Seconds to wait for in-flight requests on shutdown.
	ShutdownTimeout int `json:"shutdown_timeout"`
}

func loadConfig(pathname string) (*config, error) {
	f, err := os.Open(pathname)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	var c *config
	err = rjson.NewDecoder(f).Decode(&c)
	if err == nil && c == nil {
		c = new(config)
	}
	return c, err
}

func (c *config) applyDefaultsForMissingProperties() {
	if c.Address == "" {
		c.Address = ":8000"
	}
	if c.RateBurst == 0 {
		c.RateBurst = 1
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 5
	}
}

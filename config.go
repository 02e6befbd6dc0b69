// Package devserve implements a static file server for local development:
// it binds a loopback address, falls back to an OS-assigned port when the
// preferred one is busy, and serves a single directory over HTTP.
package devserve

import (
	"github.com/BurntSushi/toml"
)

// Config is the immutable serving setup, built once at startup.
type Config struct {
	Host  string `toml:"host"`
	Port  int    `toml:"port"`
	Root  string `toml:"dir"`
	Quiet bool   `toml:"quiet"`
	Watch bool   `toml:"watch"`
}

// DefaultConfig matches the zero-configuration behavior: current directory
// on 127.0.0.1:8000.
func DefaultConfig() Config {
	return Config{
		Host: "127.0.0.1",
		Port: 8000,
		Root: ".",
	}
}

// LoadConfig reads a TOML config file over base. Values present in the file
// replace base's; the caller applies explicit flags afterwards so they win.
func LoadConfig(path string, base Config) (Config, error) {
	config := base
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return base, err
	}
	return config, nil
}

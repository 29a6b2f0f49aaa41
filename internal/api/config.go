package api

import (
	"github.com/larsks/gpiobuttond/internal/config"
	"github.com/spf13/pflag"
)

// Config holds the configuration for the status/control API server.
type Config struct {
	ListenAddress string `mapstructure:"listen-address"`
	ListenPort    int    `mapstructure:"listen-port"`
	ConfigFile    string `mapstructure:"config-file"`
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		ListenAddress: "",
		ListenPort:    8080,
	}
}

// AddFlags adds pflag flags for the configuration.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", "", "Config file to use")
	fs.StringVar(&c.ListenAddress, "listen-address", c.ListenAddress, "Listen address for http server")
	fs.IntVar(&c.ListenPort, "listen-port", c.ListenPort, "Listen port for http server")
}

// LoadConfigWithFlagSet loads the configuration using a custom flag set.
func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	loader := config.NewConfigLoader()
	loader.SetConfigFile(c.ConfigFile)
	loader.SetDefaults(map[string]any{
		"listen-address": "",
		"listen-port":    8080,
	})
	return loader.LoadConfigWithFlagSet(c, fs)
}

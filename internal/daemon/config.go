// Package daemon wires the hardware driver, the lifecycle controller,
// and the optional MQTT and status-API outputs together into a single
// runnable service, the way the project's other services are composed
// via internal/cli.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/larsks/gpiobuttond/internal/config"
	"github.com/spf13/pflag"
)

func getDefaultConfigFile() string {
	return filepath.Join(xdg.ConfigHome, "gpiobuttond", "gpiobuttond.toml")
}

// ButtonConfig describes one button to register against the driver.
type ButtonConfig struct {
	Name                 string `mapstructure:"name"`
	Pin                  int    `mapstructure:"pin"`
	Polarity             string `mapstructure:"polarity"`      // "active-high" or "active-low"
	Pull                 string `mapstructure:"pull"`          // "none", "up", or "down"
	BounceMs             int    `mapstructure:"bounce_ms"`
	DoubleClickTimeoutMs int    `mapstructure:"double_click_timeout_ms"`
	LongPressTimeoutMs   int    `mapstructure:"long_press_timeout_ms"`
}

// Config is the full configuration for the gpiobuttond service.
type Config struct {
	ConfigFile string         `mapstructure:"config-file"`
	Chip       string         `mapstructure:"chip"`
	Dummy      bool           `mapstructure:"dummy"`
	Buttons    []ButtonConfig `mapstructure:"buttons"`

	MQTTEnable      bool   `mapstructure:"mqtt-enable"`
	MQTTServerURL   string `mapstructure:"mqtt-server-url"`
	MQTTClientID    string `mapstructure:"mqtt-client-id"`
	MQTTTopicPrefix string `mapstructure:"mqtt-topic-prefix"`
	MQTTQoS         uint8  `mapstructure:"mqtt-qos"`

	APIEnable        bool   `mapstructure:"api-enable"`
	APIListenAddress string `mapstructure:"api-listen-address"`
	APIListenPort    int    `mapstructure:"api-listen-port"`
}

// NewConfig returns a Config populated with default values.
func NewConfig() *Config {
	return &Config{
		Chip:            "gpiochip0",
		MQTTClientID:    "gpiobuttond",
		MQTTTopicPrefix: "buttons",
		MQTTQoS:         0,
		APIListenPort:   8080,
	}
}

// AddFlags adds the top-level command-line flags. Per-button
// configuration is only available via a config file: a flag syntax for
// an arbitrarily long list of structured records would be unwieldy.
func (c *Config) AddFlags(fs *pflag.FlagSet) {
	if c.ConfigFile == "" {
		c.ConfigFile = getDefaultConfigFile()
	}
	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "Config file to use")
	fs.StringVar(&c.Chip, "chip", c.Chip, "GPIO chip device to open (e.g. gpiochip0)")
	fs.BoolVar(&c.Dummy, "dummy", c.Dummy, "Use the in-memory dummy driver instead of real GPIO")

	fs.BoolVar(&c.MQTTEnable, "mqtt-enable", c.MQTTEnable, "Publish recognized gestures to MQTT")
	fs.StringVar(&c.MQTTServerURL, "mqtt-server-url", c.MQTTServerURL, "MQTT broker URL, e.g. mqtt://localhost:1883")
	fs.StringVar(&c.MQTTClientID, "mqtt-client-id", c.MQTTClientID, "MQTT client id")
	fs.StringVar(&c.MQTTTopicPrefix, "mqtt-topic-prefix", c.MQTTTopicPrefix, "Topic prefix for published gestures")

	fs.BoolVar(&c.APIEnable, "api-enable", c.APIEnable, "Serve button status over HTTP")
	fs.StringVar(&c.APIListenAddress, "api-listen-address", c.APIListenAddress, "Listen address for the status API")
	fs.IntVar(&c.APIListenPort, "api-listen-port", c.APIListenPort, "Listen port for the status API")
}

// LoadConfigWithFlagSet loads configuration with the standard
// defaults-then-file-then-flags precedence. A config file at the default
// XDG path that doesn't exist is silently skipped; an explicitly
// requested one that doesn't exist is an error.
func (c *Config) LoadConfigWithFlagSet(fs *pflag.FlagSet) error {
	explicit := c.ConfigFile != getDefaultConfigFile()
	if _, err := os.Stat(c.ConfigFile); os.IsNotExist(err) {
		if explicit {
			return fmt.Errorf("config file not found: %s", c.ConfigFile)
		}
		c.ConfigFile = ""
	}

	loader := config.NewConfigLoader()
	loader.SetConfigFile(c.ConfigFile)
	loader.SetDefaults(map[string]any{
		"chip":              c.Chip,
		"mqtt-client-id":    c.MQTTClientID,
		"mqtt-topic-prefix": c.MQTTTopicPrefix,
		"api-listen-port":   c.APIListenPort,
	})
	return loader.LoadConfigWithFlagSet(c, fs)
}

// Validate checks that every configured button is well formed.
func (c *Config) Validate() error {
	seen := make(map[int]bool, len(c.Buttons))
	for i, b := range c.Buttons {
		if b.Pin < 0 {
			return fmt.Errorf("button %d (%s): pin must not be negative", i, b.Name)
		}
		if seen[b.Pin] {
			return fmt.Errorf("button %d (%s): pin %d configured more than once", i, b.Name, b.Pin)
		}
		seen[b.Pin] = true
		if b.BounceMs < 0 {
			return fmt.Errorf("button %d (%s): bounce_ms must not be negative", i, b.Name)
		}
		switch b.Polarity {
		case "", "active-high", "active-low":
		default:
			return fmt.Errorf("button %d (%s): polarity must be active-high or active-low", i, b.Name)
		}
		switch b.Pull {
		case "", "none", "up", "down":
		default:
			return fmt.Errorf("button %d (%s): pull must be none, up, or down", i, b.Name)
		}
	}
	if c.MQTTEnable && c.MQTTServerURL == "" {
		return fmt.Errorf("mqtt-server-url is required when mqtt-enable is set")
	}
	return nil
}

package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_LoadConfigWithFlagSet(t *testing.T) {
	content := `
chip = "gpiochip4"
dummy = true

mqtt-enable = true
mqtt-server-url = "mqtt://localhost:1883"
mqtt-client-id = "test-client"
mqtt-topic-prefix = "home/buttons"

api-enable = true
api-listen-address = "127.0.0.1"
api-listen-port = 9090

[[buttons]]
name = "power"
pin = 17
polarity = "active-low"
pull = "up"
bounce_ms = 30
double_click_timeout_ms = 400
long_press_timeout_ms = 1500

[[buttons]]
name = "volume"
pin = 27
`
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "gpiobuttond.toml")
	require.NoError(t, os.WriteFile(configFile, []byte(content), 0600))

	cfg := NewConfig()
	cfg.ConfigFile = configFile

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.AddFlags(fs)
	require.NoError(t, fs.Parse(nil))

	require.NoError(t, cfg.LoadConfigWithFlagSet(fs))
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "gpiochip4", cfg.Chip)
	assert.True(t, cfg.Dummy)
	require.Len(t, cfg.Buttons, 2)

	assert.Equal(t, "power", cfg.Buttons[0].Name)
	assert.Equal(t, 17, cfg.Buttons[0].Pin)
	assert.Equal(t, "active-low", cfg.Buttons[0].Polarity)
	assert.Equal(t, "up", cfg.Buttons[0].Pull)
	assert.Equal(t, 30, cfg.Buttons[0].BounceMs)
	assert.Equal(t, 400, cfg.Buttons[0].DoubleClickTimeoutMs)
	assert.Equal(t, 1500, cfg.Buttons[0].LongPressTimeoutMs)

	assert.Equal(t, "volume", cfg.Buttons[1].Name)
	assert.Equal(t, 27, cfg.Buttons[1].Pin)

	assert.True(t, cfg.MQTTEnable)
	assert.Equal(t, "mqtt://localhost:1883", cfg.MQTTServerURL)
	assert.Equal(t, "test-client", cfg.MQTTClientID)
	assert.Equal(t, "home/buttons", cfg.MQTTTopicPrefix)

	assert.True(t, cfg.APIEnable)
	assert.Equal(t, "127.0.0.1", cfg.APIListenAddress)
	assert.Equal(t, 9090, cfg.APIListenPort)
}

func TestConfig_LoadConfigWithFlagSet_Defaults(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg := NewConfig()
	cfg.AddFlags(fs)
	require.NoError(t, fs.Parse(nil))

	require.NoError(t, cfg.LoadConfigWithFlagSet(fs))

	assert.Equal(t, "gpiochip0", cfg.Chip)
	assert.Equal(t, "gpiobuttond", cfg.MQTTClientID)
	assert.Equal(t, "buttons", cfg.MQTTTopicPrefix)
	assert.Equal(t, 8080, cfg.APIListenPort)
	assert.Empty(t, cfg.Buttons)
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name      string
		config    *Config
		expectErr bool
	}{
		{
			name: "valid config",
			config: &Config{
				Buttons: []ButtonConfig{
					{Name: "power", Pin: 17, Polarity: "active-low", Pull: "up"},
					{Name: "volume", Pin: 27},
				},
			},
			expectErr: false,
		},
		{
			name:      "no buttons",
			config:    &Config{},
			expectErr: false,
		},
		{
			name: "negative pin",
			config: &Config{
				Buttons: []ButtonConfig{{Name: "power", Pin: -1}},
			},
			expectErr: true,
		},
		{
			name: "duplicate pin",
			config: &Config{
				Buttons: []ButtonConfig{
					{Name: "power", Pin: 17},
					{Name: "other", Pin: 17},
				},
			},
			expectErr: true,
		},
		{
			name: "negative bounce",
			config: &Config{
				Buttons: []ButtonConfig{{Name: "power", Pin: 17, BounceMs: -5}},
			},
			expectErr: true,
		},
		{
			name: "bad polarity",
			config: &Config{
				Buttons: []ButtonConfig{{Name: "power", Pin: 17, Polarity: "inverted"}},
			},
			expectErr: true,
		},
		{
			name: "bad pull",
			config: &Config{
				Buttons: []ButtonConfig{{Name: "power", Pin: 17, Pull: "sideways"}},
			},
			expectErr: true,
		},
		{
			name: "mqtt enabled without server url",
			config: &Config{
				MQTTEnable: true,
			},
			expectErr: true,
		},
		{
			name: "mqtt enabled with server url",
			config: &Config{
				MQTTEnable:    true,
				MQTTServerURL: "mqtt://localhost:1883",
			},
			expectErr: false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package appconfig

import (
	"os"
	"path/filepath"
	"time"

	"pkt.systems/tchat/schema"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int          `mapstructure:"config_version" yaml:"config_version"`
	Client        ClientConfig `mapstructure:"client" yaml:"client"`
	Relay         RelayConfig  `mapstructure:"relay" yaml:"relay"`
	SSH           SSHConfig    `mapstructure:"ssh" yaml:"ssh"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// ClientConfig configures the interactive chat client.
type ClientConfig struct {
	Nick           string `mapstructure:"nick" yaml:"nick"`
	Backend        string `mapstructure:"backend" yaml:"backend"`
	Theme          string `mapstructure:"theme" yaml:"theme"`
	PollIntervalMS int    `mapstructure:"poll_interval_ms" yaml:"poll_interval_ms"`
	BackoffMS      int    `mapstructure:"backoff_ms" yaml:"backoff_ms"`
	ArmWindowMS    int    `mapstructure:"arm_window_ms" yaml:"arm_window_ms"`
	StrictArm      bool   `mapstructure:"strict_arm" yaml:"strict_arm"`
	QueueDepth     int    `mapstructure:"queue_depth" yaml:"queue_depth"`
	HistoryMax     int    `mapstructure:"history_max" yaml:"history_max"`
	LogFile        string `mapstructure:"log_file" yaml:"log_file"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
}

// RelayConfig configures the broadcast relay started by `tchat serve`.
type RelayConfig struct {
	Addr            string  `mapstructure:"addr" yaml:"addr"`
	RateLimit       float64 `mapstructure:"rate_limit" yaml:"rate_limit"`
	RateBurst       int     `mapstructure:"rate_burst" yaml:"rate_burst"`
	SubscriberDepth int     `mapstructure:"subscriber_depth" yaml:"subscriber_depth"`
}

// SSHConfig configures the optional SSH chat frontend.
type SSHConfig struct {
	Enabled     bool   `mapstructure:"enabled" yaml:"enabled"`
	Addr        string `mapstructure:"addr" yaml:"addr"`
	HostKeyPath string `mapstructure:"host_key_path" yaml:"host_key_path"`
	Backend     string `mapstructure:"backend" yaml:"backend"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, err
	}
	return Config{
		ConfigVersion: CurrentConfigVersion,
		Client: ClientConfig{
			Nick:           "",
			Backend:        schema.DefaultBackend,
			Theme:          string(schema.DefaultTheme),
			PollIntervalMS: int(schema.DefaultPollInterval / time.Millisecond),
			BackoffMS:      int(schema.DefaultBackoff / time.Millisecond),
			ArmWindowMS:    int(schema.DefaultArmWindow / time.Millisecond),
			StrictArm:      false,
			QueueDepth:     schema.DefaultQueueDepth,
			HistoryMax:     schema.DefaultHistoryMax,
			LogFile:        filepath.Join(home, ".tchat", "client.log"),
			LogLevel:       "info",
		},
		Relay: RelayConfig{
			Addr:            ":9001",
			RateLimit:       20,
			RateBurst:       50,
			SubscriberDepth: 64,
		},
		SSH: SSHConfig{
			Enabled:     false,
			Addr:        ":2222",
			HostKeyPath: filepath.Join(home, ".tchat", "ssh_host_key"),
			Backend:     schema.DefaultBackend,
		},
	}, nil
}

// DefaultConfigPath returns the standard config path.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".tchat", "config.yaml"), nil
}

// Session converts the client section into a session config. The nick is
// left as configured; callers fill it from flags or a prompt before use.
func (c ClientConfig) Session() schema.ClientConfig {
	return schema.ClientConfig{
		Nick:         schema.Nick(c.Nick),
		Backend:      c.Backend,
		Theme:        schema.ThemeName(c.Theme),
		PollInterval: time.Duration(c.PollIntervalMS) * time.Millisecond,
		Backoff:      time.Duration(c.BackoffMS) * time.Millisecond,
		ArmWindow:    time.Duration(c.ArmWindowMS) * time.Millisecond,
		StrictArm:    c.StrictArm,
		QueueDepth:   c.QueueDepth,
		HistoryMax:   c.HistoryMax,
	}
}

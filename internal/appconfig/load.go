package appconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"pkt.systems/tchat/internal/logx"
	"pkt.systems/tchat/schema"
)

// Load reads configuration from the provided path. If path is empty, uses DefaultConfigPath.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = defaultPath
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("config_version", cfg.ConfigVersion)
	v.SetDefault("client.nick", cfg.Client.Nick)
	v.SetDefault("client.backend", cfg.Client.Backend)
	v.SetDefault("client.theme", cfg.Client.Theme)
	v.SetDefault("client.poll_interval_ms", cfg.Client.PollIntervalMS)
	v.SetDefault("client.backoff_ms", cfg.Client.BackoffMS)
	v.SetDefault("client.arm_window_ms", cfg.Client.ArmWindowMS)
	v.SetDefault("client.strict_arm", cfg.Client.StrictArm)
	v.SetDefault("client.queue_depth", cfg.Client.QueueDepth)
	v.SetDefault("client.history_max", cfg.Client.HistoryMax)
	v.SetDefault("client.log_file", cfg.Client.LogFile)
	v.SetDefault("client.log_level", cfg.Client.LogLevel)
	v.SetDefault("relay.addr", cfg.Relay.Addr)
	v.SetDefault("relay.rate_limit", cfg.Relay.RateLimit)
	v.SetDefault("relay.rate_burst", cfg.Relay.RateBurst)
	v.SetDefault("relay.subscriber_depth", cfg.Relay.SubscriberDepth)
	v.SetDefault("ssh.enabled", cfg.SSH.Enabled)
	v.SetDefault("ssh.addr", cfg.SSH.Addr)
	v.SetDefault("ssh.host_key_path", cfg.SSH.HostKeyPath)
	v.SetDefault("ssh.backend", cfg.SSH.Backend)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, err
		}
	} else {
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandConfigEnv(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and names that viper cannot.
func Validate(cfg Config) error {
	c := cfg.Client
	if strings.TrimSpace(c.Nick) != "" {
		if _, err := schema.NormalizeNick(c.Nick); err != nil {
			return fmt.Errorf("%w: client.nick %q", schema.ErrInvalidConfig, c.Nick)
		}
	}
	if c.Theme != "" {
		if _, ok := schema.NormalizeThemeName(c.Theme); !ok {
			return fmt.Errorf("%w: client.theme %q (available: %s)", schema.ErrInvalidConfig, c.Theme, themeList())
		}
	}
	if strings.ContainsAny(c.Backend, " \t\r\n") {
		return fmt.Errorf("%w: client.backend %q", schema.ErrInvalidConfig, c.Backend)
	}
	if c.LogLevel != "" && !logx.ValidLevel(c.LogLevel) {
		return fmt.Errorf("%w: client.log_level %q (expected one of %s)", schema.ErrInvalidConfig, c.LogLevel, strings.Join(logx.Levels, ", "))
	}
	for name, value := range map[string]int{
		"client.poll_interval_ms": c.PollIntervalMS,
		"client.backoff_ms":       c.BackoffMS,
		"client.arm_window_ms":    c.ArmWindowMS,
		"client.queue_depth":      c.QueueDepth,
		"client.history_max":      c.HistoryMax,
		"relay.rate_burst":        cfg.Relay.RateBurst,
		"relay.subscriber_depth":  cfg.Relay.SubscriberDepth,
	} {
		if value < 0 {
			return fmt.Errorf("%w: %s must not be negative", schema.ErrInvalidConfig, name)
		}
	}
	if cfg.Relay.RateLimit < 0 {
		return fmt.Errorf("%w: relay.rate_limit must not be negative", schema.ErrInvalidConfig)
	}
	if cfg.SSH.Enabled && strings.TrimSpace(cfg.SSH.HostKeyPath) == "" {
		return fmt.Errorf("%w: ssh.host_key_path is required when ssh is enabled", schema.ErrInvalidConfig)
	}
	return nil
}

func themeList() string {
	themes := schema.AvailableThemes()
	names := make([]string, 0, len(themes))
	for _, name := range themes {
		names = append(names, string(name))
	}
	return strings.Join(names, ", ")
}

func expandConfigEnv(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Client.LogFile = expandEnv(cfg.Client.LogFile)
	cfg.SSH.HostKeyPath = expandEnv(cfg.SSH.HostKeyPath)
}

func expandEnv(value string) string {
	if value == "" {
		return value
	}
	return os.Expand(value, func(key string) string {
		if key == "" {
			return ""
		}
		if val, ok := lookupEnv(key); ok {
			return val
		}
		return "$" + key
	})
}

func lookupEnv(key string) (string, bool) {
	if val, ok := os.LookupEnv(key); ok {
		return val, true
	}
	switch key {
	case "UID":
		return fmt.Sprintf("%d", os.Getuid()), true
	case "GID":
		return fmt.Sprintf("%d", os.Getgid()), true
	}
	return "", false
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return "", err
		}
		path = defaultPath
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	cfg, err := DefaultConfig()
	if err != nil {
		return "", err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

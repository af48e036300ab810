package schema

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultBackend is the relay address dialed when none is configured.
	DefaultBackend = "localhost:9001"
	// DefaultPollInterval bounds each wait for terminal input.
	DefaultPollInterval = 16 * time.Millisecond
	// DefaultBackoff is the sleep after a read that found no frame.
	DefaultBackoff = 10 * time.Millisecond
	// DefaultArmWindow is how long a Tab keeps the next Enter a newline.
	DefaultArmWindow = 500 * time.Millisecond
	// DefaultQueueDepth sizes the outbound and inbound channels.
	DefaultQueueDepth = 64
	// DefaultHistoryMax caps the submitted-message history.
	DefaultHistoryMax = 500
)

// ClientConfig defines the tunables of one chat session.
type ClientConfig struct {
	Nick         Nick
	Backend      string
	Theme        ThemeName
	PollInterval time.Duration
	Backoff      time.Duration
	ArmWindow    time.Duration
	// StrictArm makes any key other than Tab or Enter cancel a pending Tab arm.
	StrictArm  bool
	QueueDepth int
	HistoryMax int
}

// NormalizeClientConfig applies defaults and validates the config.
func NormalizeClientConfig(cfg ClientConfig) (ClientConfig, error) {
	nick, err := NormalizeNick(string(cfg.Nick))
	if err != nil {
		return ClientConfig{}, err
	}
	cfg.Nick = nick
	cfg.Backend = strings.TrimSpace(cfg.Backend)
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if strings.ContainsAny(cfg.Backend, " \t\r\n") {
		return ClientConfig{}, fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.Backend)
	}
	if cfg.Theme == "" {
		cfg.Theme = DefaultTheme
	} else if name, ok := NormalizeThemeName(string(cfg.Theme)); ok {
		cfg.Theme = name
	} else {
		return ClientConfig{}, fmt.Errorf("%w: unknown theme %q", ErrInvalidConfig, cfg.Theme)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = DefaultBackoff
	}
	if cfg.ArmWindow <= 0 {
		cfg.ArmWindow = DefaultArmWindow
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = DefaultQueueDepth
	}
	if cfg.HistoryMax <= 0 {
		cfg.HistoryMax = DefaultHistoryMax
	}
	return cfg, nil
}

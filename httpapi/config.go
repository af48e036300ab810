package httpapi

// Config defines relay listener and flood-control settings.
type Config struct {
	Addr string
	// RateLimit is the sustained frames per second accepted from one client.
	RateLimit float64
	// RateBurst is the number of frames a client may send back to back.
	RateBurst       int
	SubscriberDepth int
}

const (
	defaultRateLimit       = 20
	defaultRateBurst       = 50
	defaultSubscriberDepth = 64
)

func (c Config) withDefaults() Config {
	if c.RateLimit <= 0 {
		c.RateLimit = defaultRateLimit
	}
	if c.RateBurst <= 0 {
		c.RateBurst = defaultRateBurst
	}
	if c.SubscriberDepth <= 0 {
		c.SubscriberDepth = defaultSubscriberDepth
	}
	return c
}

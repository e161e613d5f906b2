package sdk

import "time"

type options struct {
	callTimeout time.Duration
	attempts    int
	firstDelay  time.Duration
	maxDelay    time.Duration
}

func defaultOptions() options {
	return options{
		callTimeout: 10 * time.Second,
		attempts:    3,
		firstDelay:  200 * time.Millisecond,
		maxDelay:    2 * time.Second,
	}
}

// Option configures the SDK client.
type Option func(*options)

// WithTimeout bounds each MCP tool call. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// WithRetry sets how often a failed tool call is attempted and the delay
// before the first retry. attempts below 1 disable retries.
func WithRetry(attempts int, firstDelay time.Duration) Option {
	return func(o *options) {
		o.attempts = max(attempts, 1)
		if firstDelay > 0 {
			o.firstDelay = firstDelay
		}
	}
}

// WithMaxDelay caps the exponential backoff between attempts.
func WithMaxDelay(d time.Duration) Option {
	return func(o *options) { o.maxDelay = d }
}

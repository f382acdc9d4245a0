package repository

import "time"

// Option configures a repository.
type Option func(*clock)

// clock supplies "now" to repositories; tests pin it to a fixed instant.
type clock struct {
	now func() time.Time
}

// WithClock overrides the time source used for age windows, sent/read timestamps and activity bumps.
func WithClock(now func() time.Time) Option {
	return func(c *clock) { c.now = now }
}

func newClock(opts []Option) clock {
	c := clock{now: time.Now}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// today is the current UTC date at midnight.
func (c clock) today() time.Time {
	y, m, d := c.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

package persistence

import "time"

// Clock returns the current time used when evaluating relative filters
type Clock func() time.Time

// UTCClock returns the current time in UTC
func UTCClock() time.Time {
	return time.Now().UTC()
}

type repositoryOptions struct {
	clock Clock
}

// RepositoryOption configures a GORM repository
type RepositoryOption func(*repositoryOptions)

// WithClock overrides the clock used for relative filters such as date_range
func WithClock(clock Clock) RepositoryOption {
	return func(o *repositoryOptions) {
		if clock != nil {
			o.clock = clock
		}
	}
}

func applyRepositoryOptions(opts []RepositoryOption) repositoryOptions {
	o := repositoryOptions{clock: UTCClock}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

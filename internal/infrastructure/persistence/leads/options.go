// Package leads provides the concrete implementations of the lead
// repository: a JSON file store and a SQL store.
package leads

import (
	"time"

	"github.com/AtRiskMedia/adgrant-leads/internal/infrastructure/security"
)

type repoOptions struct {
	now   func() time.Time
	newID func() string
}

// Option customizes a repository, mostly for tests.
type Option func(*repoOptions)

// WithClock replaces time.Now for createdAt, lastDownload and purge cutoffs.
func WithClock(now func() time.Time) Option {
	return func(o *repoOptions) { o.now = now }
}

// WithIDGenerator replaces the ULID generator.
func WithIDGenerator(newID func() string) Option {
	return func(o *repoOptions) { o.newID = newID }
}

func buildOptions(opts []Option) repoOptions {
	o := repoOptions{
		now:   time.Now,
		newID: security.GenerateULID,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

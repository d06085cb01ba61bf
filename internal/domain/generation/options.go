package generation

// Option applies a configuration option to a Tracker.
type Option func(*Tracker)

// WithOnStale registers a callback run (outside the lock) for every result
// Accept rejects.
func WithOnStale(fn func(key string)) Option {
	return func(t *Tracker) {
		t.onStale = fn
	}
}

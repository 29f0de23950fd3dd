package fibonacci

// Observer receives cache events from an evaluator. Implementations must be
// safe for concurrent use; they are called with the evaluator lock held, so
// they must not call back into the evaluator.
type Observer interface {
	// ObserveLookup records one Evaluate call. hit reports whether the index
	// was already cached; size is the cache entry count after the call.
	ObserveLookup(evaluator string, hit bool, size int)
}

type noopObserver struct{}

func (noopObserver) ObserveLookup(string, bool, int) {}

// Option configures an evaluator.
type Option func(*options)

type options struct {
	observer Observer
	maxIndex int
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithMaxIndex bounds the largest index a BigEvaluator accepts and therefore
// the size of its cache. Values <= 0 keep the default.
func WithMaxIndex(n int) Option {
	return func(opts *options) {
		if n > 0 {
			opts.maxIndex = n
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{observer: noopObserver{}, maxIndex: DefaultMaxBigIndex}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

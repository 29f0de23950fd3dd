package fibonacci

// ─────────────────────────────────────────────────────────────────────────────
// Range and Bounding Constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	// MaxUint64Index is the largest index whose value fits in a uint64.
	// F(93) = 12200160415121876738; F(94) exceeds 2^64-1.
	MaxUint64Index = 93

	// DefaultMaxBigIndex bounds the BigEvaluator cache. Retaining every term
	// up to n costs roughly 0.35*n² bits, about 17 MB at this bound.
	DefaultMaxBigIndex = 20_000

	// cancellationCheckInterval is the number of fill steps between two
	// context checks in the big-integer paths.
	cancellationCheckInterval = 1024
)

package orchestration

// ProgressAggregator tracks the latest progress of several calculators and
// their average. It is not safe for concurrent use; a ProgressReporter owns
// one and feeds it from its channel.
type ProgressAggregator struct {
	values []float64
}

// NewProgressAggregator creates an aggregator for the given number of
// calculators. Returns nil if numCalculators <= 0.
func NewProgressAggregator(numCalculators int) *ProgressAggregator {
	if numCalculators <= 0 {
		return nil
	}
	return &ProgressAggregator{values: make([]float64, numCalculators)}
}

// AggregatedProgress holds the result of processing a single update.
type AggregatedProgress struct {
	// CalculatorIndex is the index of the calculator that sent the update.
	CalculatorIndex int
	// Value is the raw progress value from the update (0.0 to 1.0).
	Value float64
	// AverageProgress is the average across all calculators.
	AverageProgress float64
}

// Update records an update and returns the aggregated result. Updates with
// an out-of-range index are ignored. Progress never moves backwards.
func (a *ProgressAggregator) Update(update ProgressUpdate) AggregatedProgress {
	if update.CalculatorIndex >= 0 && update.CalculatorIndex < len(a.values) {
		if update.Value > a.values[update.CalculatorIndex] {
			a.values[update.CalculatorIndex] = update.Value
		}
	}
	return AggregatedProgress{
		CalculatorIndex: update.CalculatorIndex,
		Value:           update.Value,
		AverageProgress: a.CalculateAverage(),
	}
}

// CalculateAverage returns the current average progress.
func (a *ProgressAggregator) CalculateAverage() float64 {
	var sum float64
	for _, v := range a.values {
		sum += v
	}
	return sum / float64(len(a.values))
}

// NumCalculators returns the number of calculators being tracked.
func (a *ProgressAggregator) NumCalculators() int {
	return len(a.values)
}

// IsMultiCalculator returns true if tracking more than one calculator.
func (a *ProgressAggregator) IsMultiCalculator() bool {
	return len(a.values) > 1
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}

package fibonacci

import (
	"context"
	"math/big"
	"sort"
	"strings"
	"sync"

	apperrors "github.com/agbru/labwork/internal/errors"
)

// Calculator is the common face of every evaluator: it returns F(n) as a
// big.Int so results from different implementations can be compared.
type Calculator interface {
	// Name returns the registry name of the calculator.
	Name() string
	// Calculate returns F(n). It honors ctx cancellation.
	Calculate(ctx context.Context, n uint64) (*big.Int, error)
}

// CalculatorFactory creates and looks up calculators by name.
type CalculatorFactory interface {
	// Get returns the calculator registered under name.
	Get(name string) (Calculator, error)
	// List returns the registered names in sorted order.
	List() []string
	// Register adds a calculator, replacing any previous one of the same name.
	Register(calc Calculator)
}

// DefaultFactory is a thread-safe CalculatorFactory.
type DefaultFactory struct {
	mu          sync.RWMutex
	calculators map[string]Calculator
}

// NewDefaultFactory returns a factory holding the memo, big and doubling
// calculators, all sharing the given options.
func NewDefaultFactory(opts ...Option) *DefaultFactory {
	f := &DefaultFactory{calculators: make(map[string]Calculator)}
	f.Register(NewEvaluator(opts...))
	f.Register(NewBigEvaluator(opts...))
	f.Register(doublingCalculator{})
	return f
}

// Register implements CalculatorFactory.
func (f *DefaultFactory) Register(calc Calculator) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calculators[calc.Name()] = calc
}

// Get implements CalculatorFactory. An unknown name yields an
// apperrors.ConfigError listing the available names.
func (f *DefaultFactory) Get(name string) (Calculator, error) {
	f.mu.RLock()
	calc, ok := f.calculators[name]
	f.mu.RUnlock()
	if !ok {
		return nil, apperrors.NewConfigError("unknown algorithm %q (available: %s)", name, strings.Join(f.List(), ", "))
	}
	return calc, nil
}

// List implements CalculatorFactory.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.calculators))
	for name := range f.calculators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered calculator ordered by name.
func (f *DefaultFactory) All() []Calculator {
	names := f.List()
	f.mu.RLock()
	defer f.mu.RUnlock()
	calcs := make([]Calculator, 0, len(names))
	for _, name := range names {
		if calc, ok := f.calculators[name]; ok {
			calcs = append(calcs, calc)
		}
	}
	return calcs
}

package orchestration

import (
	"github.com/agbru/labwork/internal/fibonacci"
)

// GetCalculatorsToRun resolves an algorithm name to the calculators to run.
// "all" selects every registered calculator in sorted order; any other name
// selects that calculator alone. Unknown names yield nil.
func GetCalculatorsToRun(algo string, factory fibonacci.CalculatorFactory) []fibonacci.Calculator {
	if algo == "all" {
		keys := factory.List()
		calculators := make([]fibonacci.Calculator, 0, len(keys))
		for _, k := range keys {
			if calc, err := factory.Get(k); err == nil {
				calculators = append(calculators, calc)
			}
		}
		return calculators
	}
	if calc, err := factory.Get(algo); err == nil {
		return []fibonacci.Calculator{calc}
	}
	return nil
}

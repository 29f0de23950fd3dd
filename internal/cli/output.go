// # Naming Conventions
//
// Functions in this package follow consistent naming patterns:
//
//   - Display* functions write formatted output to an [io.Writer].
//     Examples: [DisplaySequence], [DisplayActiveUsers].
//
//   - Format* functions return a formatted string without performing I/O.
//     Examples: [FormatTerm], [FormatUser].

package cli

import (
	"context"
	"fmt"
	"io"
	"math/big"

	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/fibonacci"
	"github.com/agbru/labwork/internal/ui"
	"github.com/agbru/labwork/internal/users"
)

// SequenceHeader precedes the printed sequence.
const SequenceHeader = "Fibonacci sequence:"

// FormatTerm formats one sequence term as "F(i) = v".
func FormatTerm(i uint64, v *big.Int) string {
	return fmt.Sprintf("F(%d) = %s", i, v)
}

// DisplaySequence prints F(0) through F(count-1) in increasing order, one
// term per line, preceded by SequenceHeader unless quiet is set.
//
// Parameters:
//   - ctx: Checked by the calculator for every term.
//   - out: The output writer.
//   - calc: The calculator producing the terms.
//   - count: The number of terms.
//   - quiet: Suppresses the header.
//
// Returns:
//   - error: A context error, or a CalculationError wrapping the first
//     calculator failure; terms before it are already printed.
func DisplaySequence(ctx context.Context, out io.Writer, calc fibonacci.Calculator, count int, quiet bool) error {
	if !quiet {
		fmt.Fprintln(out, ui.Heading(SequenceHeader))
	}
	for i := 0; i < count; i++ {
		v, err := calc.Calculate(ctx, uint64(i))
		if err != nil {
			if apperrors.IsContextError(err) {
				return err
			}
			return apperrors.CalculationError{Evaluator: calc.Name(), Index: i, Cause: err}
		}
		fmt.Fprintln(out, FormatTerm(uint64(i), v))
	}
	return nil
}

// FormatUser formats a user as "Name - Email".
func FormatUser(u users.User) string {
	return fmt.Sprintf("%s - %s", u.Name, u.Email)
}

// DisplayActiveUsers prints the "Active Users:" listing.
func DisplayActiveUsers(out io.Writer, list []users.User, quiet bool) {
	if !quiet {
		fmt.Fprintln(out, ui.Heading("Active Users:"))
	}
	for _, u := range list {
		fmt.Fprintln(out, FormatUser(u))
	}
}

// DisplayUsersWithOrders prints the "Users with Orders:" listing.
func DisplayUsersWithOrders(out io.Writer, list []users.UserWithOrderInfo, quiet bool) {
	if !quiet {
		fmt.Fprintln(out, ui.Heading("Users with Orders:"))
	}
	for _, info := range list {
		fmt.Fprintf(out, "%s - Orders: %d\n", info.Name, info.TotalOrders)
	}
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/fibonacci"
	"github.com/agbru/labwork/internal/ui"
	"github.com/agbru/labwork/internal/users"
)

func init() {
	ui.SetCurrentTheme(ui.NoColorTheme)
}

func TestDisplaySequence(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := DisplaySequence(context.Background(), &buf, fibonacci.NewEvaluator(), 20, false); err != nil {
		t.Fatalf("DisplaySequence() error = %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 21 {
		t.Fatalf("got %d lines, want 21:\n%s", len(lines), buf.String())
	}
	if lines[0] != SequenceHeader {
		t.Errorf("header = %q, want %q", lines[0], SequenceHeader)
	}
	want := []string{"F(0) = 0", "F(1) = 1", "F(2) = 1", "F(3) = 2"}
	if diff := cmp.Diff(want, lines[1:5]); diff != "" {
		t.Errorf("first terms mismatch (-want +got):\n%s", diff)
	}
	if lines[20] != "F(19) = 4181" {
		t.Errorf("last line = %q, want F(19) = 4181", lines[20])
	}
}

func TestDisplaySequence_Quiet(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := DisplaySequence(context.Background(), &buf, fibonacci.NewEvaluator(), 3, true); err != nil {
		t.Fatalf("DisplaySequence() error = %v", err)
	}
	if got, want := buf.String(), "F(0) = 0\nF(1) = 1\nF(2) = 1\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestDisplaySequence_StopsAtOverflow(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	err := DisplaySequence(context.Background(), &buf, fibonacci.NewEvaluator(), fibonacci.MaxUint64Index+2, true)

	var overflow fibonacci.OverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("error = %v, want OverflowError", err)
	}
	var calcErr apperrors.CalculationError
	if !errors.As(err, &calcErr) || calcErr.Evaluator != "memo" || calcErr.Index != fibonacci.MaxUint64Index+1 {
		t.Errorf("CalculationError = %+v", calcErr)
	}
	if n := strings.Count(buf.String(), "\n"); n != fibonacci.MaxUint64Index+1 {
		t.Errorf("printed %d terms before the overflow, want %d", n, fibonacci.MaxUint64Index+1)
	}
}

func TestDisplaySequence_Canceled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var buf bytes.Buffer
	err := DisplaySequence(ctx, &buf, fibonacci.NewBigEvaluator(), 5, true)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestFormatTerm(t *testing.T) {
	t.Parallel()
	v, _ := new(big.Int).SetString("354224848179261915075", 10)
	if got, want := FormatTerm(100, v), "F(100) = 354224848179261915075"; got != want {
		t.Errorf("FormatTerm() = %q, want %q", got, want)
	}
}

func TestDisplayActiveUsers(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	DisplayActiveUsers(&buf, []users.User{
		{Name: "Alice", Email: "alice@example.com"},
		{Name: "Charlie", Email: "charlie@example.com"},
	}, false)

	want := "Active Users:\nAlice - alice@example.com\nCharlie - charlie@example.com\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

func TestDisplayUsersWithOrders(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		list  []users.UserWithOrderInfo
		quiet bool
		want  string
	}{
		{
			name: "header only",
			want: "Users with Orders:\n",
		},
		{
			name: "rows",
			list: []users.UserWithOrderInfo{
				{Name: "Alice", TotalOrders: 2},
				{Name: "Charlie", TotalOrders: 1},
			},
			want: "Users with Orders:\nAlice - Orders: 2\nCharlie - Orders: 1\n",
		},
		{
			name:  "quiet",
			list:  []users.UserWithOrderInfo{{Name: "Bob", TotalOrders: 5}},
			quiet: true,
			want:  "Bob - Orders: 5\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			DisplayUsersWithOrders(&buf, tt.list, tt.quiet)
			if got := buf.String(); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

package app

import (
	"bytes"
	"context"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"

	apperrors "github.com/agbru/labwork/internal/errors"
	"github.com/agbru/labwork/internal/fibonacci"
)

// newTestApp builds an Application from args, failing the test on error.
func newTestApp(t *testing.T, args ...string) (*Application, *bytes.Buffer) {
	t.Helper()
	var errBuf bytes.Buffer
	app, err := New(append([]string{"labwork", "--no-color"}, args...), &errBuf)
	if err != nil {
		t.Fatalf("New() error = %v (stderr: %s)", err, errBuf.String())
	}
	return app, &errBuf
}

func TestNew_HelpAndInvalid(t *testing.T) {
	var errBuf bytes.Buffer
	_, err := New([]string{"labwork", "--help"}, &errBuf)
	if !IsHelpError(err) {
		t.Errorf("New(--help) error = %v, want help error", err)
	}

	_, err = New([]string{"labwork", "--mode", "nope"}, &errBuf)
	if err == nil || IsHelpError(err) {
		t.Errorf("New(--mode nope) error = %v, want config error", err)
	}
}

func TestRun_Lab(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	app, errBuf := newTestApp(t, "--file", path, "--message", "hello lab")

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d, stderr: %s", code, errBuf.String())
	}

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	wantHead := []string{MsgWritten, "hello lab", "Fibonacci sequence:", "F(0) = 0", "F(1) = 1"}
	if diff := cmp.Diff(wantHead, lines[:5]); diff != "" {
		t.Errorf("output head mismatch (-want +got):\n%s", diff)
	}
	if last := lines[len(lines)-1]; last != "F(19) = 4181" {
		t.Errorf("last line = %q, want F(19) = 4181", last)
	}

	// A second run appends; the file now holds both lines.
	if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Fatalf("second Run() = %d", code)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "hello lab\nhello lab\n" {
		t.Errorf("file content = %q", got)
	}
}

func TestRun_LogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "labwork.log")
	app, errBuf := newTestApp(t, "--file", filepath.Join(dir, "data.txt"), "-q", "--log-level", "debug", "--log-file", logPath)

	if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d, stderr: %s", code, errBuf.String())
	}
	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"message":"line appended"`, `"component":"labwork"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file lacks %s:\n%s", want, data)
		}
	}
	if errBuf.Len() != 0 {
		t.Errorf("file logging also wrote to stderr: %q", errBuf.String())
	}
}

func TestRun_LabQuietBigEvaluator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	app, _ := newTestApp(t, "--file", path, "-q", "--algo", "big", "--count", "101")

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d", code)
	}
	if strings.Contains(out.String(), "Fibonacci sequence:") {
		t.Error("quiet mode should not print the sequence header")
	}
	if !strings.Contains(out.String(), "F(100) = 354224848179261915075\n") {
		t.Errorf("missing F(100) in output:\n%s", out.String())
	}
}

func TestRun_LabDoublingEvaluator(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	app, _ := newTestApp(t, "--file", path, "-q", "--algo", "doubling", "--count", "101")

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d", code)
	}
	if !strings.HasSuffix(out.String(), "F(100) = 354224848179261915075\n") {
		t.Errorf("unexpected tail: %q", out.String()[max(0, out.Len()-60):])
	}
}

func TestRun_LabOverflow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.txt")
	app, errBuf := newTestApp(t, "--file", path, "--count", "100")

	code := app.Run(context.Background(), &bytes.Buffer{})
	if code != apperrors.ExitErrorGeneric {
		t.Errorf("Run() = %d, want %d", code, apperrors.ExitErrorGeneric)
	}
	if !strings.Contains(errBuf.String(), "overflow") {
		t.Errorf("stderr should mention the overflow: %s", errBuf.String())
	}
}

func TestRun_LabUnwritableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "data.txt")
	app, _ := newTestApp(t, "--file", path)

	if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorIO {
		t.Errorf("Run() = %d, want %d", code, apperrors.ExitErrorIO)
	}
}

func TestRun_Users(t *testing.T) {
	app, errBuf := newTestApp(t, "--mode", "users")

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d, stderr: %s", code, errBuf.String())
	}
	want := "Active Users:\n" +
		"Alice - alice@example.com\n" +
		"Charlie - charlie@example.com\n" +
		"Users with Orders:\n"
	if diff := cmp.Diff(want, out.String()); diff != "" {
		t.Errorf("output mismatch (-want +got):\n%s", diff)
	}
}

type memRedis struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memRedis) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (m *memRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRun_UsersRedisCache(t *testing.T) {
	client := &memRedis{data: map[string]string{}}
	var errBuf bytes.Buffer
	app, err := New([]string{"labwork", "--no-color", "--mode", "users", "-q", "--cache-driver", "redis"}, &errBuf, WithRedisClient(client))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d, stderr: %s", code, errBuf.String())
	}
	if got, want := out.String(), "Alice - alice@example.com\nCharlie - charlie@example.com\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if _, ok := client.data[redisKeyPrefix+"ActiveUsersCache"]; !ok {
		t.Errorf("active users were not cached in redis: %v", client.data)
	}
}

func TestRun_UsersBadDSN(t *testing.T) {
	app, _ := newTestApp(t, "--mode", "users", "--db-driver", "pgx", "--db-dsn", "postgres://invalid host")
	if code := app.Run(context.Background(), &bytes.Buffer{}); code == apperrors.ExitSuccess {
		t.Error("Run() succeeded with an unusable DSN")
	}
}

func TestRun_Compare(t *testing.T) {
	tests := []struct {
		name      string
		count     string
		wantCode  int
		wantTexts []string
	}{
		{"all agree", "50", apperrors.ExitSuccess, []string{"Comparison Summary", "Global Status: Success", "memo", "big", "doubling"}},
		{"memo overflows", "120", apperrors.ExitSuccess, []string{"Failure", "Global Status: Success. All valid results are consistent over 120 indices."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, errBuf := newTestApp(t, "--mode", "compare", "-q", "--count", tt.count, "--workers", "4")
			var out bytes.Buffer
			if code := app.Run(context.Background(), &out); code != tt.wantCode {
				t.Fatalf("Run() = %d, want %d (stderr: %s)", code, tt.wantCode, errBuf.String())
			}
			for _, w := range tt.wantTexts {
				if !strings.Contains(out.String(), w) {
					t.Errorf("output missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

type wrongCalculator struct{}

func (wrongCalculator) Name() string { return "wrong" }

func (wrongCalculator) Calculate(_ context.Context, n uint64) (*big.Int, error) {
	return new(big.Int).SetUint64(n), nil
}

func TestRun_CompareMismatch(t *testing.T) {
	factory := fibonacci.NewDefaultFactory()
	factory.Register(wrongCalculator{})
	var errBuf bytes.Buffer
	app, err := New([]string{"labwork", "--no-color", "--mode", "compare", "-q", "--count", "10"}, &errBuf, WithFactory(factory))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitErrorMismatch {
		t.Errorf("Run() = %d, want %d", code, apperrors.ExitErrorMismatch)
	}
	if !strings.Contains(out.String(), "CRITICAL ERROR!") {
		t.Errorf("output missing mismatch report:\n%s", out.String())
	}
}

// headlessDashboard runs the --tui program without a terminal.
func headlessDashboard() AppOption {
	return WithDashboardOptions(true,
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
}

func TestRun_CompareDashboard(t *testing.T) {
	tests := []struct {
		name     string
		register bool
		wantCode int
		wantText string
	}{
		{"all agree", false, apperrors.ExitSuccess, "Global Status: Success. All valid results are consistent over 30 indices."},
		{"mismatch", true, apperrors.ExitErrorMismatch, "CRITICAL ERROR!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := fibonacci.NewDefaultFactory()
			if tt.register {
				factory.Register(wrongCalculator{})
			}
			var errBuf bytes.Buffer
			app, err := New([]string{"labwork", "--no-color", "--mode", "compare", "--tui", "--count", "30"},
				&errBuf, WithFactory(factory), headlessDashboard())
			if err != nil {
				t.Fatal(err)
			}

			var out bytes.Buffer
			if code := app.Run(context.Background(), &out); code != tt.wantCode {
				t.Fatalf("Run() = %d, want %d (stderr: %s)", code, tt.wantCode, errBuf.String())
			}
			for _, w := range []string{"Comparison Summary", tt.wantText} {
				if !strings.Contains(out.String(), w) {
					t.Errorf("summary missing %q:\n%s", w, out.String())
				}
			}
		})
	}
}

func TestRun_AllWritesMetrics(t *testing.T) {
	dir := t.TempDir()
	metricsPath := filepath.Join(dir, "labwork.prom")
	app, errBuf := newTestApp(t, "--mode", "all", "--file", filepath.Join(dir, "data.txt"), "--metrics-file", metricsPath)

	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d, stderr: %s", code, errBuf.String())
	}
	for _, w := range []string{MsgWritten, "Active Users:", "Global Status: Success"} {
		if !strings.Contains(out.String(), w) {
			t.Errorf("output missing %q", w)
		}
	}

	data, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	for _, w := range []string{
		`labwork_mode_duration_seconds_count{mode="lab",status="ok"} 1`,
		`labwork_mode_duration_seconds_count{mode="users",status="ok"} 1`,
		`labwork_user_cache_lookups_total{result="miss"} 1`,
		`labwork_sequence_cache_lookups_total{evaluator="memo"`,
	} {
		if !strings.Contains(string(data), w) {
			t.Errorf("metrics missing %q", w)
		}
	}
}

func TestRun_Canceled(t *testing.T) {
	app, errBuf := newTestApp(t, "--file", filepath.Join(t.TempDir(), "data.txt"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if code := app.Run(ctx, &bytes.Buffer{}); code != apperrors.ExitErrorCanceled {
		t.Errorf("Run() = %d, want %d (stderr: %s)", code, apperrors.ExitErrorCanceled, errBuf.String())
	}
}

func TestRun_VerboseMemoryStats(t *testing.T) {
	app, _ := newTestApp(t, "-v", "--file", filepath.Join(t.TempDir(), "data.txt"), "--count", "3")
	var out bytes.Buffer
	if code := app.Run(context.Background(), &out); code != apperrors.ExitSuccess {
		t.Fatalf("Run() = %d", code)
	}
	for _, w := range []string{"Execution Configuration", "Memory Stats:"} {
		if !strings.Contains(out.String(), w) {
			t.Errorf("verbose output missing %q", w)
		}
	}
}

func TestVersion(t *testing.T) {
	t.Parallel()
	if !HasVersionFlag([]string{"--count", "3", "--version"}) {
		t.Error("HasVersionFlag should detect --version")
	}
	if HasVersionFlag([]string{"--verbose"}) {
		t.Error("HasVersionFlag should ignore --verbose")
	}
	var buf bytes.Buffer
	PrintVersion(&buf)
	if !strings.HasPrefix(buf.String(), "labwork "+Version) {
		t.Errorf("PrintVersion() = %q", buf.String())
	}
}

type blockingCalculator struct{}

func (blockingCalculator) Name() string { return "blocking" }

func (blockingCalculator) Calculate(ctx context.Context, _ uint64) (*big.Int, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRun_Timeout(t *testing.T) {
	factory := fibonacci.NewDefaultFactory()
	factory.Register(blockingCalculator{})
	var errBuf bytes.Buffer
	args := []string{"labwork", "--no-color", "--algo", "blocking", "--timeout", "50ms",
		"--file", filepath.Join(t.TempDir(), "data.txt")}
	app, err := New(args, &errBuf, WithFactory(factory))
	if err != nil {
		t.Fatal(err)
	}

	if code := app.Run(context.Background(), &bytes.Buffer{}); code != apperrors.ExitErrorTimeout {
		t.Errorf("Run() = %d, want %d", code, apperrors.ExitErrorTimeout)
	}
	if !strings.Contains(errBuf.String(), "Status: Timeout") {
		t.Errorf("stderr should report the timeout: %s", errBuf.String())
	}
}

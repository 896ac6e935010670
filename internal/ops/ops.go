package ops

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/hpungsan/ytnb/internal/artifact"
	"github.com/hpungsan/ytnb/internal/config"
	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/notebooklm"
	"github.com/hpungsan/ytnb/internal/video"
)

// Env carries the collaborators shared by every operation.
type Env struct {
	Client   notebooklm.Client
	Fetcher  video.Fetcher
	Config   *config.Config
	Reporter *Reporter // nil discards progress output
}

func (e Env) config() *config.Config {
	if e.Config == nil {
		return config.DefaultConfig()
	}
	return e.Config
}

// Status marks printed at the head of progress lines.
const (
	MarkStart = "→"
	MarkOK    = "✓"
	MarkWarn  = "⚠"
	MarkFail  = "✗"
	MarkSkip  = "⏭"
)

// Reporter writes human-readable progress lines. Safe for concurrent use;
// a nil *Reporter discards everything.
type Reporter struct {
	mu  sync.Mutex
	w   io.Writer
	now func() time.Time
}

// NewReporter returns a Reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w, now: time.Now}
}

// Printf writes a free-form line.
func (r *Reporter) Printf(format string, args ...any) {
	if r == nil || r.w == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, format+"\n", args...)
}

// Status writes "  [HH:MM:SS] <mark> <subject>: <msg>".
func (r *Reporter) Status(mark, subject, msg string) {
	if r == nil || r.w == nil {
		return
	}
	r.line(r.now().Format("15:04:05"), mark, subject, msg)
}

// Omitted writes a status line for work that was never started.
func (r *Reporter) Omitted(subject, msg string) {
	if r == nil || r.w == nil {
		return
	}
	r.line("--:--:--", MarkSkip, subject, msg)
}

func (r *Reporter) line(clock, mark, subject, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if msg == "" {
		fmt.Fprintf(r.w, "  [%s] %s %s\n", clock, mark, subject)
		return
	}
	fmt.Fprintf(r.w, "  [%s] %s %s: %s\n", clock, mark, subject, msg)
}

type loggerKey struct{}

// WithLogger attaches l to ctx for use by operations.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func logFrom(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.Default()
}

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewRunID returns a fresh ULID identifying one invocation.
func NewRunID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ParseKinds converts kind names to kinds in generation order.
// all selects every kind; unknown names are an INVALID_INPUT error.
func ParseKinds(names []string, all bool) ([]artifact.Kind, error) {
	if all {
		return artifact.All(), nil
	}
	kinds := make([]artifact.Kind, 0, len(names))
	var unknown []string
	for _, name := range names {
		k, ok := artifact.ParseKind(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		kinds = append(kinds, k)
	}
	if len(unknown) > 0 {
		return nil, errors.NewInvalidInput(fmt.Sprintf("unknown artifact kind(s): %s (valid: %s)",
			strings.Join(unknown, ", "), strings.Join(artifact.Names(artifact.All()), ", ")))
	}
	return artifact.Sorted(kinds), nil
}

// DelayFromSeconds converts a user-supplied delay; nil means "use the configured one".
func DelayFromSeconds(seconds *float64) (*time.Duration, error) {
	if seconds == nil {
		return nil, nil
	}
	if *seconds < 0 {
		return nil, errors.NewInvalidInput("delay must not be negative")
	}
	d := time.Duration(*seconds * float64(time.Second))
	return &d, nil
}

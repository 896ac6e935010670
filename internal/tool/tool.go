// Package tool runs the external command-line collaborators (notebooklm, yt-dlp)
// and maps their failures onto structured errors.
package tool

import (
	"bytes"
	"context"
	stderrors "errors"
	"log/slog"
	"os/exec"
	"time"

	"github.com/hpungsan/ytnb/internal/errors"
)

// Runner executes a command and returns its captured stdout and stderr.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	slog.DebugContext(ctx, "exec",
		slog.String("cmd", name),
		slog.Any("args", args),
		slog.Duration("took", time.Since(start)),
		slog.Bool("ok", err == nil),
	)
	return stdout.Bytes(), stderr.Bytes(), err
}

// Check verifies that the executable exists, returning its resolved path.
func Check(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.NewToolNotFound(name, err)
	}
	return path, nil
}

// Invoke runs name with args under timeout (0 means only the parent context applies)
// and returns stdout. Failures come back as *errors.Error:
// TOOL_NOT_FOUND, TIMEOUT, or REMOTE carrying the command's own output.
func Invoke(ctx context.Context, r Runner, timeout time.Duration, op, name string, args ...string) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	stdout, stderr, err := r.Run(ctx, name, args...)
	if err == nil {
		return stdout, nil
	}

	if stderrors.Is(err, exec.ErrNotFound) {
		return nil, errors.NewToolNotFound(name, err)
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		if stderrors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, errors.NewTimeout(op, ctxErr)
		}
		return nil, errors.NewRemote(op, "cancelled", ctxErr)
	}

	output := string(stderr)
	if len(bytes.TrimSpace(stderr)) == 0 {
		output = string(stdout)
	}
	return nil, errors.NewRemote(op, output, err)
}

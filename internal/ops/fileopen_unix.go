//go:build !windows

package ops

import (
	stderrors "errors"
	"os"
	"syscall"

	"github.com/hpungsan/ytnb/internal/errors"
)

// createNoFollow creates path for writing, refusing to follow a symlink in the
// final component. Directory components are covered by ValidateReportPath.
func createNoFollow(path string, perm os.FileMode) (*os.File, error) {
	flag := os.O_CREATE | os.O_WRONLY | os.O_TRUNC | syscall.O_NOFOLLOW | syscall.O_CLOEXEC
	fd, err := syscall.Open(path, flag, uint32(perm))
	if err != nil {
		if stderrors.Is(err, syscall.ELOOP) {
			return nil, errors.NewInvalidInput("cannot write to symlink")
		}
		return nil, err
	}
	return os.NewFile(uintptr(fd), path), nil
}

package util

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrBusy is returned when another invocation holds the lock for the same input.
var ErrBusy = errors.New("input is busy: another run is rewriting it")

// RunLock is an advisory lock held for the duration of one attach run.
type RunLock struct {
	fl *flock.Flock
}

// LockPath returns the lock file used for target under lockDir. The name is a
// deterministic SHA-1 UUID of the absolute target path, so every spelling of
// the same file maps to the same lock.
func LockPath(lockDir, target string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		abs = filepath.Clean(target)
	}
	id := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+abs))
	return filepath.Join(lockDir, id.String()+".lock")
}

// AcquireRunLock takes a non-blocking exclusive lock for target. It returns
// ErrBusy when the lock is held elsewhere.
func AcquireRunLock(lockDir, target string) (*RunLock, error) {
	if err := EnsureDir(lockDir); err != nil {
		return nil, fmt.Errorf("ensure lock dir: %w", err)
	}
	fl := flock.New(LockPath(lockDir, target))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, ErrBusy
	}
	return &RunLock{fl: fl}, nil
}

// Release unlocks. It is safe to call on a nil lock.
func (l *RunLock) Release() error {
	if l == nil || l.fl == nil {
		return nil
	}
	return l.fl.Unlock()
}

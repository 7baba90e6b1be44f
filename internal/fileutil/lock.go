package fileutil

import (
	"errors"
	"fmt"

	"github.com/gofrs/flock"
)

// ErrOutputLocked reports that another process holds the lock for an output.
var ErrOutputLocked = errors.New("output is locked by another process")

// OutputLock guards an output file against concurrent writers.
type OutputLock struct {
	path string
	lock *flock.Flock
}

// LockOutput acquires an advisory lock next to the output path. It fails with
// ErrOutputLocked instead of waiting when another process holds the lock.
func LockOutput(output string) (*OutputLock, error) {
	lockPath := output + ".lock"
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOutputLocked, output)
	}
	return &OutputLock{path: lockPath, lock: lock}, nil
}

// Path returns the lock file location.
func (l *OutputLock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release unlocks and removes the lock file.
func (l *OutputLock) Release() error {
	if l == nil || l.lock == nil {
		return nil
	}
	if err := l.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock: %w", err)
	}
	return removeIfExists(l.path)
}

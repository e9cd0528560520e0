// Package lock provides cross-process file locks built on gofrs/flock.
//
// rmkgen locks a destination directory while materializing a project and the
// template cache while downloading into it, so concurrent runs do not write
// the same tree.
package lock

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// retryDelay is how often LockContext polls a held lock.
const retryDelay = 50 * time.Millisecond

// FileLock is an exclusive lock on a file path.
type FileLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// New creates a lock on path. The file is created when the lock is taken.
func New(path string) *FileLock {
	return &FileLock{
		path:  path,
		flock: flock.New(path),
	}
}

// ForDir returns the lock guarding dir: a hidden file next to it, so that
// dir itself can be created, replaced or removed while the lock is held.
func ForDir(dir string) *FileLock {
	clean := filepath.Clean(dir)
	return New(filepath.Join(filepath.Dir(clean), "."+filepath.Base(clean)+".lock"))
}

// LockContext blocks until the lock is acquired or ctx is done.
func (l *FileLock) LockContext(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	for {
		acquired, err := l.flock.TryLockContext(ctx, retryDelay)
		if err != nil {
			return fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
		}
		if !acquired {
			return fmt.Errorf("failed to acquire lock %s", l.path)
		}
		if l.current() {
			l.locked = true
			return nil
		}
		// The file was removed by the previous holder while we waited.
		if err := l.flock.Unlock(); err != nil {
			return fmt.Errorf("failed to release stale lock %s: %w", l.path, err)
		}
	}
}

// TryLock attempts to acquire the lock without blocking.
// Returns true if the lock was acquired, false if another process holds it.
func (l *FileLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	for {
		acquired, err := l.flock.TryLock()
		if err != nil {
			return false, fmt.Errorf("failed to acquire lock %s: %w", l.path, err)
		}
		if !acquired {
			return false, nil
		}
		if l.current() {
			l.locked = true
			return true, nil
		}
		if err := l.flock.Unlock(); err != nil {
			return false, fmt.Errorf("failed to release stale lock %s: %w", l.path, err)
		}
	}
}

// current reports whether the locked handle still refers to the file at
// path. A holder removes the file before releasing it, so a handle opened
// on the removed file locks nothing.
func (l *FileLock) current() bool {
	held, err := l.flock.Stat()
	if err != nil {
		return false
	}
	onDisk, err := os.Stat(l.path)
	if err != nil {
		return false
	}
	return os.SameFile(held, onDisk)
}

// Unlock removes the lock file and then releases the lock.
// It is safe to call Unlock multiple times or on an unlocked FileLock.
func (l *FileLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false

	_ = os.Remove(l.path)
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", l.path, err)
	}
	return nil
}

// Path returns the path of the lock file.
func (l *FileLock) Path() string {
	return l.path
}

// IsLocked reports whether the lock is currently held.
func (l *FileLock) IsLocked() bool {
	return l.locked
}

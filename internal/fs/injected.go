package fs

import (
	"errors"
	"os"
	"sync"
)

// InjectedError marks an error as intentionally injected by [Injected].
//
// It wraps the underlying error so errors.Is/As continue to work.
type InjectedError struct {
	Err error
}

// Error returns the underlying error's message.
func (e *InjectedError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *InjectedError) Unwrap() error {
	return e.Err
}

// IsInjected reports whether err (or any wrapped error) was injected.
// Returns false if err is nil.
func IsInjected(err error) bool {
	var injected *InjectedError

	return errors.As(err, &injected)
}

// Injected wraps an [FS] and fails a configured number of upcoming
// [FS.WriteFile] calls. Used in tests to exercise the safe updater's
// rollback path; writes beyond the configured count pass through.
type Injected struct {
	FS

	mu        sync.Mutex
	writeErr  error
	remaining int
	writes    int
}

// NewInjected returns an injection decorator over inner.
func NewInjected(inner FS) *Injected {
	return &Injected{FS: inner}
}

// FailNextWrites makes the next n WriteFile calls fail with err.
func (i *Injected) FailNextWrites(n int, err error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.remaining = n
	i.writeErr = err
}

// Writes returns how many WriteFile calls reached this FS, failed or not.
func (i *Injected) Writes() int {
	i.mu.Lock()
	defer i.mu.Unlock()

	return i.writes
}

// WriteFile fails while injected failures remain, then passes through.
func (i *Injected) WriteFile(path string, data []byte, perm os.FileMode) error {
	i.mu.Lock()
	i.writes++
	fail := i.remaining > 0

	if fail {
		i.remaining--
	}

	err := i.writeErr
	i.mu.Unlock()

	if fail {
		return &InjectedError{Err: err}
	}

	return i.FS.WriteFile(path, data, perm)
}

// Compile-time interface check.
var _ FS = (*Injected)(nil)

package fs

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// DryRun wraps an [FS] and turns every mutation into a log line. Reads pass
// through untouched, so rules still see the real tree while deciding what
// they would change.
type DryRun struct {
	FS

	log *log.Logger
}

// NewDryRun returns a dry-run decorator over inner.
// Panics if inner or logger is nil.
func NewDryRun(inner FS, logger *log.Logger) *DryRun {
	if inner == nil {
		panic("inner fs is nil")
	}

	if logger == nil {
		panic("logger is nil")
	}

	return &DryRun{FS: inner, log: logger}
}

// WriteFile logs the intended write and drops it.
func (d *DryRun) WriteFile(path string, data []byte, _ os.FileMode) error {
	d.log.Info("dry-run: skipping write", "path", path, "bytes", len(data))

	return nil
}

// WriteFileAtomic logs the intended write and drops it.
func (d *DryRun) WriteFileAtomic(path string, data []byte, _ os.FileMode) error {
	d.log.Info("dry-run: skipping atomic write", "path", path, "bytes", len(data))

	return nil
}

// Remove logs the intended deletion and drops it.
func (d *DryRun) Remove(path string) error {
	d.log.Info("dry-run: skipping remove", "path", path)

	return nil
}

// Chtimes logs the intended timestamp change and drops it.
func (d *DryRun) Chtimes(path string, _, mtime time.Time) error {
	d.log.Info("dry-run: skipping chtimes", "path", path, "mtime", mtime)

	return nil
}

// Compile-time interface check.
var _ FS = (*DryRun)(nil)

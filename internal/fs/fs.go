// Package fs provides the filesystem seam for notekeeper.
//
// The main types are:
//   - [FS]: interface for the operations the service performs
//   - [Real]: production implementation wrapping the [os] package
//   - [DryRun]: decorator that logs and drops all mutations
//   - [Injected]: testing decorator that fails selected writes
//
// Document rewrites go through [FS.WriteFile] (plain in-place write, no
// temporary files); only the pass report uses [FS.WriteFileAtomic].
package fs

import (
	iofs "io/fs"
	"os"
	"time"
)

// FS defines the filesystem operations used by the walker, the safe
// updater, and the keeper rules.
//
// All methods mirror their [os] and [path/filepath] equivalents but can be
// intercepted for dry runs and fault injection in tests.
type FS interface {
	// ReadFile reads an entire file into memory. See [os.ReadFile].
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to path in place, truncating any previous
	// content. See [os.WriteFile]. No temporary file is involved; callers
	// own the rollback story.
	WriteFile(path string, data []byte, perm os.FileMode) error

	// WriteFileAtomic writes data via a temp file + rename so crashes
	// cannot leave a partial file behind. Used for the pass report, never
	// for documents.
	WriteFileAtomic(path string, data []byte, perm os.FileMode) error

	// Stat returns file info. See [os.Stat].
	Stat(path string) (os.FileInfo, error)

	// Remove deletes a file. See [os.Remove].
	Remove(path string) error

	// Chtimes sets a file's access and modification times. See [os.Chtimes].
	Chtimes(path string, atime, mtime time.Time) error

	// WalkDir walks the tree rooted at root. See [path/filepath.WalkDir].
	WalkDir(root string, fn iofs.WalkDirFunc) error
}

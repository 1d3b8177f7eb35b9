// Package rewrite applies metadata updates to note files with strict
// all-or-nothing semantics.
//
// Safety requirements:
//   - Any format, parse, or schema failure aborts before any write.
//   - The new document is fully assembled and validated in memory first.
//   - A failed write triggers a best-effort restore of the original bytes.
//   - No temporary files are created; an update that changes nothing never
//     touches the file at all.
package rewrite

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"notekeeper/internal/frontmatter"
	"notekeeper/internal/fs"
)

// WriteError reports that writing the new document failed. A rollback of
// the original content was attempted; RollbackErr is nil when the original
// was restored. The rollback outcome is diagnostic only and never changes
// the error kind the caller sees.
type WriteError struct {
	Path        string
	Err         error
	RollbackErr error
}

// Error returns the write failure description.
func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying write error.
func (e *WriteError) Unwrap() error {
	return e.Err
}

// Updater rewrites frontmatter blocks in place.
//
// Concurrent Apply calls for distinct paths are safe; the caller must
// guarantee that no two concurrent calls target the same path.
type Updater struct {
	fs  fs.FS
	log *log.Logger
}

// NewUpdater returns an updater over fsys that reports through logger.
// Panics if fsys or logger is nil.
func NewUpdater(fsys fs.FS, logger *log.Logger) *Updater {
	if fsys == nil {
		panic("fs is nil")
	}

	if logger == nil {
		panic("logger is nil")
	}

	return &Updater{fs: fsys, log: logger}
}

// Apply merges upd into the frontmatter block of the file at path.
//
// The whole file is read into memory, the block is located and parsed, the
// update is merged (existing keys keep their position, new keys append in
// update order), and the document is reassembled with every byte outside
// the block untouched. Newline style and a leading BOM are preserved. If
// the result is byte-identical to the original, no write happens.
//
// Failures before the write return *frontmatter.FormatError, *ParseError,
// or *SchemaError with the file provably unchanged. A failed write returns
// a *WriteError after attempting to restore the original content.
func (u *Updater) Apply(path string, upd frontmatter.Update) error {
	raw, err := u.fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	original := string(raw)
	body, hadBOM := frontmatter.StripBOM(original)

	region, err := frontmatter.Locate(body)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	meta, err := frontmatter.Parse(body[region.Start:region.End])
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	err = meta.Apply(upd)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	block, err := meta.Marshal()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	if region.Newline != "\n" {
		block = strings.ReplaceAll(block, "\n", region.Newline)
	}

	// Prefix is the opening marker line; suffix starts at the closing
	// marker line and is carried over byte-for-byte. The newline that
	// terminated the old block content is re-emitted by the serializer.
	prefix := body[:region.Start]
	suffix := strings.TrimPrefix(body[region.End:], region.Newline)

	next := prefix + block + suffix
	if hadBOM {
		next = frontmatter.BOM + next
	}

	if next == original {
		u.log.Debug("frontmatter already current", "path", path)

		return nil
	}

	err = u.fs.WriteFile(path, []byte(next), 0o644)
	if err == nil {
		u.log.Debug("updated frontmatter", "path", path)

		return nil
	}

	u.log.Warn("write failed, restoring original", "path", path, "err", err)

	werr := &WriteError{Path: path, Err: err}

	rollbackErr := u.fs.WriteFile(path, raw, 0o644)
	if rollbackErr != nil {
		werr.RollbackErr = rollbackErr
		u.log.Error("could not restore original content", "path", path, "err", rollbackErr)
	} else {
		u.log.Warn("restored original content after failed write", "path", path)
	}

	return werr
}

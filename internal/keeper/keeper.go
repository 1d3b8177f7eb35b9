// Package keeper implements the note-maintenance rules: keeping an item
// note's recorded storage path in line with where the file actually lives,
// optionally syncing date fields with filesystem timestamps, and cleaning
// up untitled notes. The service loop in this package fans the rules out
// over the note tree on a fixed cadence.
package keeper

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"notekeeper/internal/frontmatter"
	"notekeeper/internal/fs"
	"notekeeper/internal/rewrite"
)

// ErrOutsideWarehouse reports an item note whose path does not contain the
// configured warehouse directory, so no storage path can be derived for it.
var ErrOutsideWarehouse = errors.New("note is outside the warehouse directory")

// Frontmatter keys maintained by the rules.
const (
	fieldItem       = "item"
	fieldPath       = "path"
	fieldCreated    = "creation_date"
	fieldModified   = "modification_date"
	noteSuffix      = ".md"
	timestampFormat = "02.01.2006 15:04:05"
)

// Options configures a [Keeper].
type Options struct {
	// Warehouse is the directory name storage paths are computed
	// relative to.
	Warehouse string

	// TrashDir names the directory untitled-note cleanup never descends
	// into. Empty means no trash exclusion.
	TrashDir string

	// UntitledPrefix marks notes eligible for cleanup. Compared
	// case-insensitively against file names.
	UntitledPrefix string
}

// Keeper applies maintenance rules to individual notes.
type Keeper struct {
	fs      fs.FS
	log     *log.Logger
	updater *rewrite.Updater
	opts    Options
}

// New returns a keeper over fsys that reports through logger.
// Panics if fsys or logger is nil.
func New(fsys fs.FS, logger *log.Logger, opts Options) *Keeper {
	if fsys == nil {
		panic("fs is nil")
	}

	if logger == nil {
		panic("logger is nil")
	}

	return &Keeper{
		fs:      fsys,
		log:     logger,
		updater: rewrite.NewUpdater(fsys, logger),
		opts:    opts,
	}
}

// EnsureStoragePath checks the "path" key of an item note and rewrites it
// when it no longer matches the note's warehouse-relative directory.
//
// Notes that are not items, or whose parent directory is not an item
// container, are left alone. An item note outside the warehouse directory
// is an error.
func (k *Keeper) EnsureStoragePath(_ context.Context, path string) error {
	inContainer, err := k.inItemContainer(path)
	if err != nil {
		return err
	}

	if !inContainer {
		return nil
	}

	params, err := k.ReadParams(path)
	if err != nil {
		return err
	}

	if !IsItem(params) {
		// only items carry a storage path
		return nil
	}

	actual, found := k.warehouseRelativeDir(path)
	if !found {
		return fmt.Errorf("%s: %w", path, ErrOutsideWarehouse)
	}

	current, _ := params.GetString(fieldPath)
	if current == actual {
		return nil
	}

	k.log.Info("updating storage path", "path", path, "from", current, "to", actual)

	return k.updater.Apply(path, frontmatter.Update{{Key: fieldPath, Value: actual}})
}

// ReadParams reads a note's frontmatter leniently: a note without a valid
// marker pair yields an empty mapping rather than an error. Read and parse
// failures still propagate.
func (k *Keeper) ReadParams(path string) (*frontmatter.Mapping, error) {
	raw, err := k.fs.ReadFile(path)
	if err != nil {
		return nil, err
	}

	body, _ := frontmatter.StripBOM(string(raw))

	region, err := frontmatter.Locate(body)
	if err != nil {
		var formatErr *frontmatter.FormatError
		if errors.As(err, &formatErr) {
			return frontmatter.NewMapping(), nil
		}

		return nil, err
	}

	return frontmatter.Parse(body[region.Start:region.End])
}

// IsItem reports whether params mark a note as an item. The value is
// stringified first, so `item: true` and `item: "True"` both count.
func IsItem(params *frontmatter.Mapping) bool {
	value, ok := params.Get(fieldItem)
	if !ok {
		return false
	}

	return strings.EqualFold(fmt.Sprint(value), "true")
}

// inItemContainer reports whether the note's parent directory contains a
// same-named note marking it as an item container.
func (k *Keeper) inItemContainer(path string) (bool, error) {
	dir := filepath.Dir(path)
	container := filepath.Join(dir, filepath.Base(dir)+noteSuffix)

	params, err := k.ReadParams(container)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			k.log.Debug("not an item container", "dir", dir)

			return false, nil
		}

		return false, err
	}

	return IsItem(params), nil
}

// warehouseRelativeDir returns the note's directory relative to the
// warehouse segment of its path, or found=false when the path does not
// contain the warehouse directory. A note directly inside the warehouse
// maps to ".".
func (k *Keeper) warehouseRelativeDir(path string) (string, bool) {
	parts := strings.Split(filepath.ToSlash(path), "/")

	idx := slices.Index(parts, k.opts.Warehouse)
	if idx < 0 {
		return "", false
	}

	rel := parts[idx+1 : len(parts)-1]
	if len(rel) == 0 {
		return ".", true
	}

	return filepath.Join(rel...), true
}

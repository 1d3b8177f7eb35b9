package keeper

import (
	iofs "io/fs"
	"path/filepath"
	"strings"
)

// RemoveUntitled deletes every note under root whose name starts with the
// configured untitled prefix, except notes in the trash directory (at any
// level) and notes directly in root. Returns how many notes were deleted.
//
// Per-file deletion failures are logged and do not stop the sweep.
func (k *Keeper) RemoveUntitled(root string) (int, error) {
	if k.opts.UntitledPrefix == "" {
		return 0, nil
	}

	prefix := strings.ToLower(k.opts.UntitledPrefix)
	deleted := 0

	err := k.fs.WalkDir(root, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}

			k.log.Warn("skipping unreadable entry", "path", path, "err", err)

			return nil
		}

		if d.IsDir() {
			if k.opts.TrashDir != "" && d.Name() == k.opts.TrashDir {
				return iofs.SkipDir
			}

			return nil
		}

		if filepath.Dir(path) == root {
			// notes directly in the root are kept
			return nil
		}

		name := strings.ToLower(d.Name())
		if !strings.HasSuffix(name, noteSuffix) || !strings.HasPrefix(name, prefix) {
			return nil
		}

		removeErr := k.fs.Remove(path)
		if removeErr != nil {
			k.log.Error("could not delete untitled note", "path", path, "err", removeErr)

			return nil
		}

		deleted++
		k.log.Info("deleted untitled note", "path", path)

		return nil
	})
	if err != nil {
		return deleted, err
	}

	if deleted > 0 {
		k.log.Info("untitled cleanup finished", "deleted", deleted)
	} else {
		k.log.Debug("no untitled notes found")
	}

	return deleted, nil
}

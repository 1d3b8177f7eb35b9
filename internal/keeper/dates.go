package keeper

import (
	"context"

	"notekeeper/internal/frontmatter"
)

// EnsureTimestamps checks a note's creation_date and modification_date
// fields against the file's filesystem timestamps and rewrites them when
// they drifted. After a rewrite the original access and modification times
// are restored, so the next pass does not see the rewrite as a new change
// and loop forever.
//
// creation_date is seeded once from the file's change time and then treated
// as authoritative: the change time moves on every rewrite, so re-deriving
// it would never converge.
func (k *Keeper) EnsureTimestamps(_ context.Context, path string) error {
	info, err := k.fs.Stat(path)
	if err != nil {
		return err
	}

	mtime := info.ModTime()
	atime, ctime := fileTimes(info)

	created := ctime.Format(timestampFormat)
	modified := mtime.Format(timestampFormat)

	params, err := k.ReadParams(path)
	if err != nil {
		return err
	}

	var upd frontmatter.Update

	if _, exists := params.Get(fieldCreated); !exists {
		upd = append(upd, frontmatter.Field{Key: fieldCreated, Value: created})
	}

	if current, _ := params.GetString(fieldModified); current != modified {
		upd = append(upd, frontmatter.Field{Key: fieldModified, Value: modified})
	}

	if len(upd) == 0 {
		k.log.Debug("dates already current", "path", path)

		return nil
	}

	k.log.Info("updating dates", "path", path)

	err = k.updater.Apply(path, upd)
	if err != nil {
		return err
	}

	return k.fs.Chtimes(path, atime, mtime)
}

//go:build !linux

package keeper

import (
	"os"
	"time"
)

// fileTimes falls back to the modification time on platforms where the
// stat structure is not portable to inspect.
func fileTimes(info os.FileInfo) (atime, ctime time.Time) {
	return info.ModTime(), info.ModTime()
}

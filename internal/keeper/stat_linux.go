//go:build linux

package keeper

import (
	"os"
	"syscall"
	"time"
)

// fileTimes extracts access and change times from stat info. The change
// time stands in for creation time, matching how the dates rule has always
// interpreted it on Linux.
func fileTimes(info os.FileInfo) (atime, ctime time.Time) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return info.ModTime(), info.ModTime()
	}

	atime = time.Unix(st.Atim.Sec, st.Atim.Nsec)
	ctime = time.Unix(st.Ctim.Sec, st.Ctim.Nsec)

	return atime, ctime
}

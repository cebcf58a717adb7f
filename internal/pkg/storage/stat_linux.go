package storage

import (
	"io/fs"
	"syscall"
	"time"
)

// createdAt returns the inode change time, the closest linux stat has to a creation time
func createdAt(info fs.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec)) //nolint:unconvert
	}
	return info.ModTime()
}

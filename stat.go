package ecsfs

import (
	"os"
	"time"
)

// FileInfo returns the entry as os.FileInfo. Sys returns the DirEntry.
func (e DirEntry) FileInfo() os.FileInfo {
	return entryFileInfo{e}
}

type entryFileInfo struct {
	entry DirEntry
}

func (e entryFileInfo) Name() string {
	return e.entry.Name()
}

func (e entryFileInfo) Size() int64 {
	return int64(e.entry.FileSize)
}

// Mode is always a regular file; the volume stores no permissions.
func (e entryFileInfo) Mode() os.FileMode {
	return 0
}

// ModTime is always the zero time; the volume stores no timestamps.
func (e entryFileInfo) ModTime() time.Time {
	return time.Time{}
}

func (e entryFileInfo) IsDir() bool {
	return false
}

func (e entryFileInfo) Sys() interface{} {
	return e.entry
}

// rootFileInfo describes the root directory, the only directory of a volume.
type rootFileInfo struct{}

func (rootFileInfo) Name() string       { return "/" }
func (rootFileInfo) Size() int64        { return 0 }
func (rootFileInfo) Mode() os.FileMode  { return os.ModeDir | 0755 }
func (rootFileInfo) ModTime() time.Time { return time.Time{} }
func (rootFileInfo) IsDir() bool        { return true }
func (rootFileInfo) Sys() interface{}   { return nil }

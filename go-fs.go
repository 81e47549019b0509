package ecsfs

import (
	"io"
	"io/fs"

	"github.com/spf13/afero"
)

type goDirEntry struct {
	fs.FileInfo
}

func (g goDirEntry) Type() fs.FileMode {
	return g.FileInfo.Mode().Type()
}

func (g goDirEntry) Info() (fs.FileInfo, error) {
	return g.FileInfo, nil
}

// ReadDir lists the root directory for io/fs; see fs.ReadDirFile.
func (f *File) ReadDir(n int) ([]fs.DirEntry, error) {
	entries, err := f.Readdir(n)
	if err != nil && err != io.EOF {
		return nil, err
	}

	goEntries := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		goEntries[i] = goDirEntry{e}
	}
	return goEntries, err
}

// NewIOFS exposes a mounted volume as fs.FS.
func NewIOFS(vol *Volume) afero.IOFS {
	return afero.NewIOFS(NewFs(vol))
}

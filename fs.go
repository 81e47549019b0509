package ecsfs

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/aligator/ecsfs/checkpoint"
	"github.com/spf13/afero"
)

// Fs exposes a mounted volume as afero.Fs.
// The volume has a single flat root directory and stores neither permissions nor
// timestamps, so Mkdir, Chmod, Chown and Chtimes fail with ErrNotSupported.
type Fs struct {
	vol *Volume
}

// ensure Fs implements afero.Fs
var _ afero.Fs = (*Fs)(nil)

// NewFs wraps vol. The Fs must not be used after vol is unmounted.
func NewFs(vol *Volume) *Fs {
	return &Fs{vol: vol}
}

// cleanName strips the root prefix from name and reports whether name is the root itself.
func cleanName(name string) (string, bool) {
	name = strings.TrimPrefix(name, "./")
	name = strings.TrimLeft(name, "/")
	return name, name == "" || name == "."
}

func pathError(op, name string, err error) error {
	return &os.PathError{Op: op, Path: name, Err: err}
}

func (fs *Fs) Create(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0666)
}

func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	if _, root := cleanName(name); root {
		return pathError("mkdir", name, ErrAlreadyExists)
	}
	return pathError("mkdir", name, ErrNotSupported)
}

func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	if _, root := cleanName(path); root {
		return nil
	}
	return pathError("mkdir", path, ErrNotSupported)
}

func (fs *Fs) Open(name string) (afero.File, error) {
	return fs.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile supports os.O_CREATE, os.O_EXCL, os.O_TRUNC and os.O_APPEND.
// Truncating recreates the file and therefore fails while it is open elsewhere.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	file, root := cleanName(name)
	writable := flag&(os.O_WRONLY|os.O_RDWR) != 0
	if root {
		if writable {
			return nil, pathError("open", name, ErrNotSupported)
		}
		return &File{vol: fs.vol, name: "/", id: -1, isDirectory: true}, nil
	}
	if strings.Contains(file, "/") {
		return nil, pathError("open", name, ErrNotFound)
	}

	entry, err := fs.vol.Lookup(file)
	exists := err == nil
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, pathError("open", name, err)
	}

	switch {
	case !exists && flag&os.O_CREATE == 0:
		return nil, pathError("open", name, err)
	case !exists:
		err = fs.vol.Create(file)
	case flag&os.O_CREATE != 0 && flag&os.O_EXCL != 0:
		err = checkpoint.From(ErrAlreadyExists)
	case flag&os.O_TRUNC != 0 && writable && entry.FileSize > 0:
		if err = fs.vol.Delete(file); err == nil {
			err = fs.vol.Create(file)
		}
	}
	if err != nil {
		return nil, pathError("open", name, err)
	}

	id, err := fs.vol.Open(file)
	if err != nil {
		return nil, pathError("open", name, err)
	}

	return &File{
		vol:      fs.vol,
		name:     file,
		id:       id,
		readOnly: !writable,
		append:   flag&os.O_APPEND != 0,
	}, nil
}

func (fs *Fs) Remove(name string) error {
	file, root := cleanName(name)
	if root {
		return pathError("remove", name, ErrNotSupported)
	}
	if err := fs.vol.Delete(file); err != nil {
		return pathError("remove", name, err)
	}
	return nil
}

// RemoveAll deletes name, or every file if name is the root.
func (fs *Fs) RemoveAll(path string) error {
	file, root := cleanName(path)
	if !root {
		err := fs.vol.Delete(file)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return pathError("removeall", path, err)
		}
		return nil
	}

	files, err := fs.vol.List()
	if err != nil {
		return pathError("removeall", path, err)
	}
	for _, f := range files {
		if err := fs.vol.Delete(f.Name); err != nil {
			return pathError("removeall", f.Name, err)
		}
	}
	return nil
}

func (fs *Fs) Rename(oldname, newname string) error {
	oldFile, oldRoot := cleanName(oldname)
	newFile, newRoot := cleanName(newname)
	if oldRoot || newRoot {
		return pathError("rename", oldname, ErrNotSupported)
	}
	if err := fs.vol.Rename(oldFile, newFile); err != nil {
		return pathError("rename", oldname, err)
	}
	return nil
}

func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	file, root := cleanName(name)
	if root {
		return rootFileInfo{}, nil
	}

	entry, err := fs.vol.Lookup(file)
	if err != nil {
		return nil, pathError("stat", name, err)
	}
	return entry.FileInfo(), nil
}

func (fs *Fs) Name() string {
	return "ecsfs"
}

func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return pathError("chmod", name, ErrNotSupported)
}

func (fs *Fs) Chown(name string, uid, gid int) error {
	return pathError("chown", name, ErrNotSupported)
}

func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return pathError("chtimes", name, ErrNotSupported)
}

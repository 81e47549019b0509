package ecsfs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/aligator/ecsfs/checkpoint"
	"github.com/spf13/afero"
)

// These errors may occur while processing a file.
var (
	ErrReadFile = errors.New("could not read file completely")
	ErrSeekFile = errors.New("could not seek inside of the file")
	ErrReadDir  = errors.New("could not read the directory")
)

// File is an open file or the root directory of a volume. It implements afero.File
// on top of a descriptor of the volume.
type File struct {
	vol  *Volume
	name string
	id   int // descriptor, -1 for the root directory

	isDirectory bool
	readOnly    bool
	append      bool

	// dirOffset is the number of directory entries already returned by Readdir.
	dirOffset int
}

// ensure File implements afero.File
var _ afero.File = (*File)(nil)

func (f *File) Close() error {
	if f.vol == nil {
		return pathError("close", f.name, ErrBadDescriptor)
	}

	var err error
	if !f.isDirectory {
		err = f.vol.Close(f.id)
	}

	f.vol = nil
	f.id = -1
	f.dirOffset = 0
	if err != nil {
		return pathError("close", f.name, err)
	}
	return nil
}

func (f *File) checkFile(op string) error {
	if f.vol == nil {
		return pathError(op, f.name, ErrBadDescriptor)
	}
	if f.isDirectory {
		return pathError(op, f.name, syscall.EISDIR)
	}
	return nil
}

// Read reads from the current offset and returns io.EOF at the end of the file.
func (f *File) Read(p []byte) (n int, err error) {
	if err := f.checkFile("read"); err != nil {
		return 0, err
	}
	if len(p) == 0 {
		return 0, nil
	}

	n, err = f.vol.Read(f.id, p)
	if err != nil {
		return n, checkpoint.Wrap(err, ErrReadFile)
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// ReadAt reads len(p) bytes at off without moving the offset used by Read.
// It returns io.EOF if the file ends before p is full.
func (f *File) ReadAt(p []byte, off int64) (n int, err error) {
	if err := f.checkFile("read"); err != nil {
		return 0, err
	}

	size, err := f.vol.Stat(f.id)
	if err != nil {
		return 0, checkpoint.Wrap(err, ErrReadFile)
	}
	if off >= size {
		return 0, io.EOF
	}

	err = f.at(off, func() error {
		for n < len(p) {
			read, err := f.vol.Read(f.id, p[n:])
			n += read
			if err != nil {
				return err
			}
			if read == 0 {
				return io.EOF
			}
		}
		return nil
	})
	if err == io.EOF {
		return n, io.EOF
	}
	return n, checkpoint.Wrap(err, ErrReadFile)
}

// at runs fn with the descriptor positioned at off and restores the previous offset.
func (f *File) at(off int64, fn func() error) error {
	saved, err := f.vol.Offset(f.id)
	if err != nil {
		return err
	}
	if err := f.vol.Seek(f.id, off); err != nil {
		return err
	}

	err = fn()

	// The file may only have grown, so the saved offset is still valid.
	if seekErr := f.vol.Seek(f.id, saved); err == nil {
		err = seekErr
	}
	return err
}

// Seek jumps to a specific offset in the file. This affects Read and Write but not ReadAt and WriteAt.
// May return a syscall.EINVAL error if the whence value is invalid.
// May return an afero.ErrOutOfRange error if the offset is outside of the file.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	if err := f.checkFile("seek"); err != nil {
		return 0, err
	}

	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		current, err := f.vol.Offset(f.id)
		if err != nil {
			return 0, checkpoint.Wrap(err, ErrSeekFile)
		}
		offset += current
	case io.SeekEnd:
		size, err := f.vol.Stat(f.id)
		if err != nil {
			return 0, checkpoint.Wrap(err, ErrSeekFile)
		}
		offset += size
	default:
		return 0, checkpoint.Wrap(ErrSeekFile, fmt.Errorf("%w, offset: %v, whence: %v", syscall.EINVAL, offset, whence))
	}

	if err := f.vol.Seek(f.id, offset); err != nil {
		return 0, checkpoint.Wrap(err, ErrSeekFile)
	}
	return offset, nil
}

// Write writes at the current offset, or at the end if the file was opened with os.O_APPEND.
// It returns io.ErrShortWrite if the volume ran out of blocks.
func (f *File) Write(p []byte) (n int, err error) {
	if err := f.checkFile("write"); err != nil {
		return 0, err
	}
	if f.readOnly {
		return 0, pathError("write", f.name, ErrBadDescriptor)
	}
	if len(p) == 0 {
		return 0, nil
	}

	if f.append {
		if _, err := f.Seek(0, io.SeekEnd); err != nil {
			return 0, err
		}
	}

	n, err = f.vol.Write(f.id, p)
	if err != nil {
		return n, pathError("write", f.name, err)
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// WriteAt writes at off without moving the offset used by Write.
// off may not lie beyond the end of the file.
func (f *File) WriteAt(p []byte, off int64) (n int, err error) {
	if err := f.checkFile("write"); err != nil {
		return 0, err
	}
	if f.readOnly {
		return 0, pathError("write", f.name, ErrBadDescriptor)
	}
	if len(p) == 0 {
		return 0, nil
	}

	err = f.at(off, func() error {
		var err error
		n, err = f.vol.Write(f.id, p)
		return err
	})
	if err != nil {
		return n, pathError("write", f.name, err)
	}
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

func (f *File) Name() string {
	return f.name
}

// Readdir reads the contents of the root directory.
// May return syscall.ENOTDIR if the current File is no directory.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	if f.vol == nil {
		return nil, pathError("readdir", f.name, ErrBadDescriptor)
	}
	if !f.isDirectory {
		return nil, checkpoint.Wrap(syscall.ENOTDIR, ErrReadDir)
	}

	files, err := f.vol.List()
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDir)
	}

	start := f.dirOffset
	if start > len(files) {
		start = len(files)
	}
	end := len(files)
	if count > 0 {
		if start == end {
			return []os.FileInfo{}, io.EOF
		}
		if start+count < end {
			end = start + count
		}
	}
	f.dirOffset = end

	result := make([]os.FileInfo, 0, end-start)
	for _, file := range files[start:end] {
		entry, err := f.vol.Lookup(file.Name)
		if err != nil {
			return nil, checkpoint.Wrap(err, ErrReadDir)
		}
		result = append(result, entry.FileInfo())
	}
	return result, nil
}

func (f *File) Readdirnames(count int) ([]string, error) {
	content, err := f.Readdir(count)

	names := make([]string, len(content))
	for i, entry := range content {
		names[i] = entry.Name()
	}
	return names, err
}

func (f *File) Stat() (os.FileInfo, error) {
	if f.vol == nil {
		return nil, pathError("stat", f.name, ErrBadDescriptor)
	}
	if f.isDirectory {
		return rootFileInfo{}, nil
	}

	entry, err := f.vol.Lookup(f.name)
	if err != nil {
		return nil, pathError("stat", f.name, err)
	}
	return entry.FileInfo(), nil
}

// Sync does nothing: every write already reached the device.
func (f *File) Sync() error {
	return f.checkFile("sync")
}

// Truncate only accepts the current size; the volume cannot shrink or sparsely grow files.
func (f *File) Truncate(size int64) error {
	if err := f.checkFile("truncate"); err != nil {
		return err
	}

	current, err := f.vol.Stat(f.id)
	if err != nil {
		return pathError("truncate", f.name, err)
	}
	if size != current {
		return pathError("truncate", f.name, ErrNotSupported)
	}
	return nil
}

func (f *File) WriteString(s string) (ret int, err error) {
	return f.Write([]byte(s))
}

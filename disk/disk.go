// Package disk provides the block device a volume is stored on: a file of fixed-size
// blocks inside an afero.Fs, addressed by block index.
package disk

import (
	"errors"
	"fmt"
	"os"

	"github.com/aligator/ecsfs/checkpoint"
	"github.com/spf13/afero"
)

// BlockSize is the size of every block on the device.
const BlockSize = 4096

// These errors may occur while accessing a disk.
var (
	ErrBadSize    = errors.New("image size is not a positive multiple of the block size")
	ErrBlockRange = errors.New("block index out of range")
	ErrBufferSize = errors.New("buffer is not exactly one block")
	ErrClosed     = errors.New("disk is not open")
)

// Disk is an image file opened as a block device.
type Disk struct {
	file   afero.File
	name   string
	blocks int
}

// Open opens the image called name in fs for reading and writing.
// The returned error wraps os.ErrNotExist if there is no such image.
func Open(fs afero.Fs, name string) (*Disk, error) {
	file, err := fs.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, checkpoint.From(err)
	}

	size := stat.Size()
	if size <= 0 || size%BlockSize != 0 {
		file.Close()
		return nil, checkpoint.Wrap(fmt.Errorf("%s has %d bytes", name, size), ErrBadSize)
	}

	return &Disk{
		file:   file,
		name:   name,
		blocks: int(size / BlockSize),
	}, nil
}

// Name returns the name the image was opened with.
func (d *Disk) Name() string {
	return d.name
}

// BlockCount returns the number of blocks on the disk, or -1 once it is closed.
func (d *Disk) BlockCount() int {
	if d.file == nil {
		return -1
	}
	return d.blocks
}

// ReadBlock fills buf with the content of block index.
func (d *Disk) ReadBlock(index int, buf []byte) error {
	if err := d.check(index, buf); err != nil {
		return err
	}

	_, err := d.file.ReadAt(buf, int64(index)*BlockSize)
	return checkpoint.From(err)
}

// WriteBlock stores buf as the content of block index.
func (d *Disk) WriteBlock(index int, buf []byte) error {
	if err := d.check(index, buf); err != nil {
		return err
	}

	_, err := d.file.WriteAt(buf, int64(index)*BlockSize)
	return checkpoint.From(err)
}

// Close releases the image file. Any further access fails with ErrClosed.
func (d *Disk) Close() error {
	if d.file == nil {
		return checkpoint.From(ErrClosed)
	}

	err := d.file.Close()
	d.file = nil
	return checkpoint.From(err)
}

func (d *Disk) check(index int, buf []byte) error {
	if d.file == nil {
		return checkpoint.From(ErrClosed)
	}
	if index < 0 || index >= d.blocks {
		return checkpoint.Wrap(fmt.Errorf("block %d of %d", index, d.blocks), ErrBlockRange)
	}
	if len(buf) != BlockSize {
		return checkpoint.Wrap(fmt.Errorf("got %d bytes", len(buf)), ErrBufferSize)
	}
	return nil
}

package ecsfs

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/aligator/ecsfs/checkpoint"
	"github.com/aligator/ecsfs/disk"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Volume is a mounted file system.
//
// A Volume is not safe for concurrent use. Callers sharing one must serialize every
// call behind a single lock.
type Volume struct {
	dev     Device
	sb      Superblock
	fat     *fat
	fds     *descriptorTable
	log     logrus.FieldLogger
	mounted bool
}

// Option configures a Volume at mount time.
type Option func(v *Volume)

// WithLogger sets the logger used for debug and warning messages.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(v *Volume) {
		v.log = logger
	}
}

// WithMaxOpenFiles sets the capacity of the descriptor table. Values below 1 are ignored.
func WithMaxOpenFiles(n int) Option {
	return func(v *Volume) {
		if n > 0 {
			v.fds = newDescriptorTable(n)
		}
	}
}

// Mount opens the image called name in fs and mounts the volume on it.
func Mount(fs afero.Fs, name string, opts ...Option) (*Volume, error) {
	dev, err := disk.Open(fs, name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, checkpoint.Wrap(err, ErrNotFound)
	}
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrIO)
	}

	opts = append([]Option{WithLogger(logrus.StandardLogger().WithField("volume", name))}, opts...)
	return MountDevice(dev, opts...)
}

// MountDevice mounts the volume stored on dev.
// dev is closed if mounting fails.
func MountDevice(dev Device, opts ...Option) (*Volume, error) {
	v := &Volume{
		dev: dev,
		fds: newDescriptorTable(DefaultMaxOpenFiles),
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(v)
	}

	sb, err := v.readSuperblock()
	if err != nil {
		dev.Close()
		return nil, err
	}

	v.sb = *sb
	v.fat = newFAT(dev, sb)
	v.fds.reset()
	v.mounted = true

	v.log.WithFields(logrus.Fields{
		"blocks":     sb.TotalBlockCount,
		"dataBlocks": sb.DataBlockCount,
		"fatBlocks":  sb.FATBlockCount,
	}).Debug("mounted volume")
	return v, nil
}

func (v *Volume) readSuperblock() (*Superblock, error) {
	buf := make([]byte, disk.BlockSize)
	if err := v.dev.ReadBlock(0, buf); err != nil {
		return nil, checkpoint.Wrap(err, ErrIO)
	}

	sb, err := decodeSuperblock(buf)
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrBadFormat)
	}

	if err := sb.validate(v.dev.BlockCount()); err != nil {
		return nil, checkpoint.Wrap(err, ErrBadFormat)
	}
	return sb, nil
}

// validate checks the geometry against itself and a device of blockCount blocks.
func (sb *Superblock) validate(blockCount int) error {
	if !bytes.Equal(sb.Signature[:], []byte(Signature)) {
		return fmt.Errorf("signature %q", sb.Signature[:])
	}
	if int(sb.TotalBlockCount) != blockCount {
		return fmt.Errorf("superblock counts %d blocks, device has %d", sb.TotalBlockCount, blockCount)
	}
	if int(sb.FATBlockCount)*entriesPerBlock < int(sb.DataBlockCount) {
		return fmt.Errorf("%d FAT blocks cannot hold %d entries", sb.FATBlockCount, sb.DataBlockCount)
	}
	if sb.RootDirBlock <= uint16(sb.FATBlockCount) || sb.RootDirBlock >= sb.TotalBlockCount {
		return fmt.Errorf("root directory block %d outside the volume", sb.RootDirBlock)
	}
	if int(sb.DataStart)+int(sb.DataBlockCount) > int(sb.TotalBlockCount) {
		return fmt.Errorf("data region %d+%d exceeds %d blocks", sb.DataStart, sb.DataBlockCount, sb.TotalBlockCount)
	}
	return nil
}

// Unmount closes the device. The volume stays mounted if closing fails.
func (v *Volume) Unmount() error {
	if err := v.checkMounted(); err != nil {
		return err
	}

	if err := v.dev.Close(); err != nil {
		return checkpoint.Wrap(err, ErrIO)
	}

	v.mounted = false
	v.log.WithField("openFiles", v.fds.inUse()).Debug("unmounted volume")
	return nil
}

func (v *Volume) checkMounted() error {
	if v == nil || !v.mounted {
		return checkpoint.From(ErrNotMounted)
	}
	return nil
}

// Superblock returns a copy of the geometry read at mount.
func (v *Volume) Superblock() Superblock {
	return v.sb
}

// Info describes the geometry and usage of a volume.
type Info struct {
	TotalBlocks  int
	FATBlocks    int
	RootDirBlock int
	DataStart    int
	DataBlocks   int
	FreeFAT      int
	FreeRoot     int
}

// String formats the info as the "key=value" report, one field per line.
func (i Info) String() string {
	var b strings.Builder
	b.WriteString("FS Info:\n")
	fmt.Fprintf(&b, "total_blk_count=%d\n", i.TotalBlocks)
	fmt.Fprintf(&b, "fat_blk_count=%d\n", i.FATBlocks)
	fmt.Fprintf(&b, "rdir_blk=%d\n", i.RootDirBlock)
	fmt.Fprintf(&b, "data_blk=%d\n", i.DataStart)
	fmt.Fprintf(&b, "data_blk_count=%d\n", i.DataBlocks)
	fmt.Fprintf(&b, "fat_free_ratio=%d/%d\n", i.FreeFAT, i.DataBlocks)
	fmt.Fprintf(&b, "rdir_free_ratio=%d/%d\n", i.FreeRoot, MaxFiles)
	return b.String()
}

// Info scans the FAT and the root directory for free space.
func (v *Volume) Info() (Info, error) {
	if err := v.checkMounted(); err != nil {
		return Info{}, err
	}

	freeFAT, err := v.fat.countFree()
	if err != nil {
		return Info{}, err
	}

	dir, err := v.loadDir()
	if err != nil {
		return Info{}, err
	}

	return Info{
		TotalBlocks:  int(v.sb.TotalBlockCount),
		FATBlocks:    int(v.sb.FATBlockCount),
		RootDirBlock: int(v.sb.RootDirBlock),
		DataStart:    int(v.sb.DataStart),
		DataBlocks:   int(v.sb.DataBlockCount),
		FreeFAT:      freeFAT,
		FreeRoot:     dir.countFree(),
	}, nil
}

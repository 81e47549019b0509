package ecsfs

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/aligator/ecsfs/checkpoint"
	"github.com/aligator/ecsfs/disk"
	"github.com/spf13/afero"
)

// MaxDataBlocks is the largest data region a volume can address; EOC is not a block index.
const MaxDataBlocks = int(EOC) - 1

// NewSuperblock returns the geometry of a volume with dataBlocks data blocks:
// superblock, FAT, root directory and data region in that order.
func NewSuperblock(dataBlocks int) (*Superblock, error) {
	if dataBlocks < 1 || dataBlocks > MaxDataBlocks {
		return nil, checkpoint.Wrap(fmt.Errorf("%d data blocks, want 1 to %d", dataBlocks, MaxDataBlocks), ErrInvalidArgument)
	}

	fatBlocks := (dataBlocks + entriesPerBlock - 1) / entriesPerBlock
	total := 1 + fatBlocks + 1 + dataBlocks
	if total > int(EOC) {
		return nil, checkpoint.Wrap(fmt.Errorf("%d blocks in total", total), ErrInvalidArgument)
	}

	sb := &Superblock{
		TotalBlockCount: uint16(total),
		RootDirBlock:    uint16(1 + fatBlocks),
		DataStart:       uint16(2 + fatBlocks),
		DataBlockCount:  uint16(dataBlocks),
		FATBlockCount:   uint8(fatBlocks),
	}
	copy(sb.Signature[:], Signature)
	return sb, nil
}

// Format creates the image called name in fs holding an empty volume with
// dataBlocks data blocks. An existing image is overwritten.
// FAT entry 0 is reserved so data block 0 is never used.
func Format(fs afero.Fs, name string, dataBlocks int) error {
	sb, err := NewSuperblock(dataBlocks)
	if err != nil {
		return err
	}

	file, err := fs.OpenFile(name, os.O_CREATE|os.O_TRUNC|os.O_RDWR, 0644)
	if err != nil {
		return checkpoint.Wrap(err, ErrIO)
	}
	defer file.Close()

	if err := file.Truncate(int64(sb.TotalBlockCount) * disk.BlockSize); err != nil {
		return checkpoint.Wrap(err, ErrIO)
	}

	buf, err := sb.encode()
	if err != nil {
		return err
	}
	if _, err := file.WriteAt(buf, 0); err != nil {
		return checkpoint.Wrap(err, ErrIO)
	}

	fatHead := make([]byte, 2)
	binary.LittleEndian.PutUint16(fatHead, EOC)
	if _, err := file.WriteAt(fatHead, disk.BlockSize); err != nil {
		return checkpoint.Wrap(err, ErrIO)
	}

	// The root directory and the data region are already zero from Truncate.
	return checkpoint.Wrap(file.Close(), ErrIO)
}

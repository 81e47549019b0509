package ecsfs

import (
	"encoding/binary"
	"fmt"

	"github.com/aligator/ecsfs/checkpoint"
	"github.com/aligator/ecsfs/disk"
)

// fat is the file allocation table: one 16 bit entry per data block, packed into
// consecutive blocks starting at block 1. An entry is 0 if the data block is free,
// EOC if it ends a chain and otherwise the index of the next data block.
//
// Every change is written through to the device immediately.
type fat struct {
	dev     Device
	blocks  int // number of FAT blocks
	entries int // number of valid entries, equal to the data block count
}

func newFAT(dev Device, sb *Superblock) *fat {
	return &fat{
		dev:     dev,
		blocks:  int(sb.FATBlockCount),
		entries: int(sb.DataBlockCount),
	}
}

// locate returns the device block holding entry index and the byte offset in it.
func (f *fat) locate(index uint16) (block int, offset int) {
	return 1 + int(index)/entriesPerBlock, (int(index) % entriesPerBlock) * 2
}

func (f *fat) inRange(index uint16) bool {
	return int(index) < f.entries
}

func (f *fat) readBlock(block int, buf []byte) error {
	return checkpoint.Wrap(f.dev.ReadBlock(block, buf), ErrIO)
}

func (f *fat) writeBlock(block int, buf []byte) error {
	return checkpoint.Wrap(f.dev.WriteBlock(block, buf), ErrIO)
}

// get returns the raw value of entry index.
func (f *fat) get(index uint16) (uint16, error) {
	if !f.inRange(index) {
		return 0, checkpoint.Wrap(fmt.Errorf("entry %d of %d", index, f.entries), ErrCorruptChain)
	}

	block, offset := f.locate(index)
	buf := make([]byte, disk.BlockSize)
	if err := f.readBlock(block, buf); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[offset:]), nil
}

// next returns the block following index in its chain, or EOC if index ends it.
// A device failure is reported as an error, never as EOC.
func (f *fat) next(index uint16) (uint16, error) {
	value, err := f.get(index)
	if err != nil {
		return EOC, err
	}

	if value == 0 || (value != EOC && !f.inRange(value)) {
		return EOC, checkpoint.Wrap(fmt.Errorf("entry %d links to %d", index, value), ErrCorruptChain)
	}
	return value, nil
}

// set stores value in entry index.
func (f *fat) set(index uint16, value uint16) error {
	if !f.inRange(index) {
		return checkpoint.Wrap(fmt.Errorf("entry %d of %d", index, f.entries), ErrCorruptChain)
	}

	block, offset := f.locate(index)
	buf := make([]byte, disk.BlockSize)
	if err := f.readBlock(block, buf); err != nil {
		return err
	}
	binary.LittleEndian.PutUint16(buf[offset:], value)
	return f.writeBlock(block, buf)
}

// allocate claims the first free entry, marks it as the end of a chain and returns it.
// ok is false if every data block is in use.
// Entry 0 is never handed out: a link to it would read as a free entry.
func (f *fat) allocate() (index uint16, ok bool, err error) {
	buf := make([]byte, disk.BlockSize)
	for b := 0; b < f.blocks; b++ {
		if err := f.readBlock(1+b, buf); err != nil {
			return EOC, false, err
		}

		for i := 0; i < entriesPerBlock; i++ {
			entry := b*entriesPerBlock + i
			if entry >= f.entries {
				return EOC, false, nil
			}

			if entry == 0 || binary.LittleEndian.Uint16(buf[i*2:]) != 0 {
				continue
			}

			binary.LittleEndian.PutUint16(buf[i*2:], EOC)
			if err := f.writeBlock(1+b, buf); err != nil {
				return EOC, false, err
			}
			return uint16(entry), true, nil
		}
	}
	return EOC, false, nil
}

// extend allocates a block and links it behind last.
func (f *fat) extend(last uint16) (index uint16, ok bool, err error) {
	index, ok, err = f.allocate()
	if err != nil || !ok {
		return EOC, ok, err
	}

	if err := f.set(last, index); err != nil {
		return EOC, false, err
	}
	return index, true, nil
}

// chain returns every block of the chain starting at first.
func (f *fat) chain(first uint16) ([]uint16, error) {
	var blocks []uint16
	for block := first; block != EOC; {
		if len(blocks) >= f.entries {
			return blocks, checkpoint.Wrap(fmt.Errorf("chain from %d does not end", first), ErrCorruptChain)
		}
		blocks = append(blocks, block)

		next, err := f.next(block)
		if err != nil {
			return blocks, err
		}
		block = next
	}
	return blocks, nil
}

// free releases every block of the chain starting at first and returns how many there were.
func (f *fat) free(first uint16) (int, error) {
	blocks, err := f.chain(first)
	if err != nil {
		return 0, err
	}

	for i, block := range blocks {
		if err := f.set(block, 0); err != nil {
			return i, err
		}
	}
	return len(blocks), nil
}

// countFree returns the number of free entries.
func (f *fat) countFree() (int, error) {
	free := 0
	buf := make([]byte, disk.BlockSize)
	for b := 0; b < f.blocks; b++ {
		if err := f.readBlock(1+b, buf); err != nil {
			return 0, err
		}

		for i := 0; i < entriesPerBlock; i++ {
			if b*entriesPerBlock+i >= f.entries {
				return free, nil
			}
			if binary.LittleEndian.Uint16(buf[i*2:]) == 0 {
				free++
			}
		}
	}
	return free, nil
}

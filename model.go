// File model contains the structs which match the direct structures of the volume.

package ecsfs

import (
	"bytes"
	"encoding/binary"

	"github.com/aligator/ecsfs/checkpoint"
	"github.com/aligator/ecsfs/disk"
)

const (
	// Signature identifies a formatted volume in the first bytes of the superblock.
	Signature = "ECS150FS"

	// MaxFiles is the number of slots in the root directory.
	MaxFiles = 128

	// FilenameLen is the size of the name field of a slot, including the terminating NUL.
	FilenameLen = 16

	// DefaultMaxOpenFiles is the descriptor table capacity unless WithMaxOpenFiles is used.
	DefaultMaxOpenFiles = 32

	// EOC marks the end of a chain, and a file without blocks in DirEntry.FirstBlock.
	EOC uint16 = 0xFFFF

	entriesPerBlock = disk.BlockSize / 2
	dirEntrySize    = disk.BlockSize / MaxFiles
)

// Superblock is the first block of the volume and describes its geometry.
type Superblock struct {
	Signature       [8]byte
	TotalBlockCount uint16
	RootDirBlock    uint16
	DataStart       uint16
	DataBlockCount  uint16
	FATBlockCount   uint8
	Padding         [4079]byte
}

// DirEntry is one slot of the root directory.
type DirEntry struct {
	Filename   [FilenameLen]byte
	FileSize   uint32
	FirstBlock uint16
	Reserved   [10]byte
}

// dirBlock is the root directory block.
type dirBlock [MaxFiles]DirEntry

// Name returns the filename up to its terminating NUL.
func (e *DirEntry) Name() string {
	if i := bytes.IndexByte(e.Filename[:], 0); i >= 0 {
		return string(e.Filename[:i])
	}
	return string(e.Filename[:])
}

// IsFree reports whether the slot holds no file.
func (e *DirEntry) IsFree() bool {
	return e.Filename[0] == 0
}

func (e *DirEntry) setName(name string) {
	e.Filename = [FilenameLen]byte{}
	copy(e.Filename[:], name)
}

func decodeSuperblock(buf []byte) (*Superblock, error) {
	sb := &Superblock{}
	err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, sb)
	if err != nil {
		return nil, checkpoint.From(err)
	}
	return sb, nil
}

func (sb *Superblock) encode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, disk.BlockSize))
	if err := binary.Write(buf, binary.LittleEndian, sb); err != nil {
		return nil, checkpoint.From(err)
	}
	return buf.Bytes(), nil
}

func decodeDirBlock(buf []byte) (*dirBlock, error) {
	dir := &dirBlock{}
	err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, dir)
	if err != nil {
		return nil, checkpoint.From(err)
	}
	return dir, nil
}

func (d *dirBlock) encode() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, disk.BlockSize))
	if err := binary.Write(buf, binary.LittleEndian, d); err != nil {
		return nil, checkpoint.From(err)
	}
	return buf.Bytes(), nil
}

// find returns the slot holding name, or -1.
func (d *dirBlock) find(name string) int {
	for i := range d {
		if !d[i].IsFree() && d[i].Name() == name {
			return i
		}
	}
	return -1
}

// firstFree returns the lowest free slot, or -1.
func (d *dirBlock) firstFree() int {
	for i := range d {
		if d[i].IsFree() {
			return i
		}
	}
	return -1
}

func (d *dirBlock) countFree() int {
	free := 0
	for i := range d {
		if d[i].IsFree() {
			free++
		}
	}
	return free
}

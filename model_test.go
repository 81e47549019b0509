package ecsfs

import (
	"encoding/binary"
	"testing"

	"github.com/aligator/ecsfs/disk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuperblock_encode(t *testing.T) {
	sb, err := NewSuperblock(8192)
	require.NoError(t, err)

	buf, err := sb.encode()
	require.NoError(t, err)
	require.Len(t, buf, disk.BlockSize)

	assert.Equal(t, "ECS150FS", string(buf[:8]))
	assert.Equal(t, uint16(8198), binary.LittleEndian.Uint16(buf[8:]), "total block count")
	assert.Equal(t, uint16(5), binary.LittleEndian.Uint16(buf[10:]), "root directory block")
	assert.Equal(t, uint16(6), binary.LittleEndian.Uint16(buf[12:]), "data start")
	assert.Equal(t, uint16(8192), binary.LittleEndian.Uint16(buf[14:]), "data block count")
	assert.Equal(t, byte(4), buf[16], "FAT block count")

	decoded, err := decodeSuperblock(buf)
	require.NoError(t, err)
	assert.Equal(t, sb, decoded)
}

func TestDirBlock_encode(t *testing.T) {
	dir := &dirBlock{}
	dir[1] = DirEntry{FileSize: 0x01020304, FirstBlock: 0x0506}
	dir[1].setName("hello.txt")

	buf, err := dir.encode()
	require.NoError(t, err)
	require.Len(t, buf, disk.BlockSize)

	slot := buf[dirEntrySize : 2*dirEntrySize]
	assert.Equal(t, "hello.txt\x00", string(slot[:10]))
	assert.Equal(t, uint32(0x01020304), binary.LittleEndian.Uint32(slot[16:]))
	assert.Equal(t, uint16(0x0506), binary.LittleEndian.Uint16(slot[20:]))
	assert.Equal(t, make([]byte, dirEntrySize), buf[:dirEntrySize], "slot 0 stays empty")
}

func TestDirEntry_Name(t *testing.T) {
	tests := []struct {
		name     string
		filename [FilenameLen]byte
		want     string
		wantFree bool
	}{
		{name: "empty slot", want: "", wantFree: true},
		{name: "short name", filename: [FilenameLen]byte{'a', 'b'}, want: "ab"},
		{
			name:     "no terminator",
			filename: [FilenameLen]byte{'0', '1', '2', '3', '4', '5', '6', '7', '8', '9', 'a', 'b', 'c', 'd', 'e', 'f'},
			want:     "0123456789abcdef",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &DirEntry{Filename: tt.filename}
			if got := e.Name(); got != tt.want {
				t.Errorf("DirEntry.Name() = %v, want %v", got, tt.want)
			}
			if got := e.IsFree(); got != tt.wantFree {
				t.Errorf("DirEntry.IsFree() = %v, want %v", got, tt.wantFree)
			}
		})
	}
}

func TestDirEntry_setNameClearsOldName(t *testing.T) {
	e := &DirEntry{}
	e.setName("longer-name")
	e.setName("short")
	assert.Equal(t, "short", e.Name())
}

func TestNewSuperblock(t *testing.T) {
	tests := []struct {
		name       string
		dataBlocks int
		wantFAT    uint8
		wantErr    bool
	}{
		{name: "one block", dataBlocks: 1, wantFAT: 1},
		{name: "full FAT block", dataBlocks: 2048, wantFAT: 1},
		{name: "one more", dataBlocks: 2049, wantFAT: 2},
		{name: "zero", dataBlocks: 0, wantErr: true},
		{name: "too many", dataBlocks: MaxDataBlocks + 1, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb, err := NewSuperblock(tt.dataBlocks)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewSuperblock() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			assert.Equal(t, tt.wantFAT, sb.FATBlockCount)
			assert.Equal(t, uint16(1)+uint16(tt.wantFAT), sb.RootDirBlock)
			assert.Equal(t, sb.RootDirBlock+1, sb.DataStart)
			assert.NoError(t, sb.validate(int(sb.TotalBlockCount)))
		})
	}
}

func TestFormat(t *testing.T) {
	fs := testingImage(t, 10)

	stat, err := fs.Stat("disk.img")
	require.NoError(t, err)
	assert.Equal(t, int64(13*disk.BlockSize), stat.Size())

	fatBlock := rawBlock(t, fs, 1)
	assert.Equal(t, EOC, binary.LittleEndian.Uint16(fatBlock), "entry 0 is reserved")
	assert.Equal(t, make([]byte, disk.BlockSize-2), fatBlock[2:])
	assert.Equal(t, make([]byte, disk.BlockSize), rawBlock(t, fs, 2), "empty root directory")
}

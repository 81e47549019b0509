package disk

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/spf13/afero"
)

func testImage(t *testing.T, size int64) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	f, err := fs.Create("disk.img")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Truncate(size); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return fs
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name       string
		size       int64
		open       string
		wantBlocks int
		wantErr    error
	}{
		{name: "four blocks", size: 4 * BlockSize, open: "disk.img", wantBlocks: 4},
		{name: "missing image", size: BlockSize, open: "other.img", wantErr: os.ErrNotExist},
		{name: "empty image", size: 0, open: "disk.img", wantErr: ErrBadSize},
		{name: "partial block", size: BlockSize + 1, open: "disk.img", wantErr: ErrBadSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Open(testImage(t, tt.size), tt.open)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			defer d.Close()
			if got := d.BlockCount(); got != tt.wantBlocks {
				t.Errorf("Disk.BlockCount() = %v, want %v", got, tt.wantBlocks)
			}
		})
	}
}

func TestDisk_ReadWriteBlock(t *testing.T) {
	d, err := Open(testImage(t, 3*BlockSize), "disk.img")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	want := bytes.Repeat([]byte{0x5A}, BlockSize)
	if err := d.WriteBlock(2, want); err != nil {
		t.Fatalf("Disk.WriteBlock() error = %v", err)
	}

	got := make([]byte, BlockSize)
	if err := d.ReadBlock(2, got); err != nil {
		t.Fatalf("Disk.ReadBlock() error = %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("Disk.ReadBlock() did not return the written block")
	}

	if err := d.ReadBlock(1, got); err != nil {
		t.Fatalf("Disk.ReadBlock() error = %v", err)
	}
	if !bytes.Equal(got, make([]byte, BlockSize)) {
		t.Errorf("Disk.ReadBlock() of an untouched block is not zero")
	}
}

func TestDisk_Check(t *testing.T) {
	d, err := Open(testImage(t, 2*BlockSize), "disk.img")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	tests := []struct {
		name    string
		index   int
		buf     []byte
		wantErr error
	}{
		{name: "negative index", index: -1, buf: make([]byte, BlockSize), wantErr: ErrBlockRange},
		{name: "index past end", index: 2, buf: make([]byte, BlockSize), wantErr: ErrBlockRange},
		{name: "short buffer", index: 0, buf: make([]byte, 10), wantErr: ErrBufferSize},
		{name: "valid", index: 1, buf: make([]byte, BlockSize)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := d.ReadBlock(tt.index, tt.buf); !errors.Is(err, tt.wantErr) {
				t.Errorf("Disk.ReadBlock() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err := d.WriteBlock(tt.index, tt.buf); !errors.Is(err, tt.wantErr) {
				t.Errorf("Disk.WriteBlock() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDisk_Close(t *testing.T) {
	d, err := Open(testImage(t, BlockSize), "disk.img")
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("Disk.Close() error = %v", err)
	}
	if got := d.BlockCount(); got != -1 {
		t.Errorf("Disk.BlockCount() after close = %v, want -1", got)
	}
	if err := d.ReadBlock(0, make([]byte, BlockSize)); !errors.Is(err, ErrClosed) {
		t.Errorf("Disk.ReadBlock() after close error = %v, want %v", err, ErrClosed)
	}
	if err := d.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("Disk.Close() twice error = %v, want %v", err, ErrClosed)
	}
}

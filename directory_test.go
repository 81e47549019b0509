package ecsfs

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolume_Create(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		file     string
		wantErr  error
	}{
		{name: "simple name", file: "a.txt"},
		{name: "fifteen bytes", file: strings.Repeat("x", 15)},
		{name: "sixteen bytes", file: strings.Repeat("x", 16), wantErr: ErrInvalidName},
		{name: "empty name", file: "", wantErr: ErrInvalidName},
		{name: "contains NUL", file: "a\x00b", wantErr: ErrInvalidName},
		{name: "duplicate", existing: []string{"a"}, file: "a", wantErr: ErrAlreadyExists},
		{name: "other file exists", existing: []string{"a"}, file: "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vol, _ := testingNew(t, 10)
			for _, name := range tt.existing {
				require.NoError(t, vol.Create(name))
			}

			err := vol.Create(tt.file)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Volume.Create() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			entry, err := vol.Lookup(tt.file)
			require.NoError(t, err)
			assert.Equal(t, uint32(0), entry.FileSize)
			assert.Equal(t, EOC, entry.FirstBlock)
		})
	}
}

func TestVolume_CreateDirectoryFull(t *testing.T) {
	vol, _ := testingNew(t, 10)
	for i := 0; i < MaxFiles; i++ {
		require.NoError(t, vol.Create(fmt.Sprintf("file%d", i)))
	}

	err := vol.Create("onemore")
	assert.True(t, errors.Is(err, ErrDirectoryFull), "Volume.Create() error = %v", err)

	info, err := vol.Info()
	require.NoError(t, err)
	assert.Equal(t, 0, info.FreeRoot)
}

func TestVolume_CreateReusesLowestSlot(t *testing.T) {
	vol, _ := testingNew(t, 10)
	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, vol.Create(name))
	}
	require.NoError(t, vol.Delete("a"))
	require.NoError(t, vol.Create("d"))

	files, err := vol.List()
	require.NoError(t, err)
	assert.Equal(t, []FileEntry{{Name: "d"}, {Name: "b"}, {Name: "c"}}, files)
}

func TestVolume_Delete(t *testing.T) {
	vol, _ := testingNew(t, 10)
	require.NoError(t, vol.Create("a"))

	id, err := vol.Open("a")
	require.NoError(t, err)
	n, err := vol.Write(id, make([]byte, 5000))
	require.NoError(t, err)
	require.Equal(t, 5000, n)

	err = vol.Delete("a")
	assert.True(t, errors.Is(err, ErrBusy), "Volume.Delete() error = %v", err)

	require.NoError(t, vol.Close(id))
	require.NoError(t, vol.Delete("a"))

	_, err = vol.Lookup("a")
	assert.True(t, errors.Is(err, ErrNotFound), "Volume.Lookup() error = %v", err)

	info, err := vol.Info()
	require.NoError(t, err)
	assert.Equal(t, 10-1, info.FreeFAT, "blocks are freed")
	assert.Equal(t, MaxFiles, info.FreeRoot)
}

func TestVolume_DeleteNotFoundLeavesDirectory(t *testing.T) {
	vol, fs := testingNew(t, 10)
	require.NoError(t, vol.Create("a"))

	before := append([]byte(nil), rawBlock(t, fs, int(vol.sb.RootDirBlock))...)

	for _, name := range []string{"b", "", strings.Repeat("x", 20)} {
		err := vol.Delete(name)
		assert.Error(t, err, "Volume.Delete(%q)", name)
	}

	after := rawBlock(t, fs, int(vol.sb.RootDirBlock))
	if !bytes.Equal(before, after) {
		t.Errorf("failed Delete changed the root directory")
	}
}

func TestVolume_Rename(t *testing.T) {
	tests := []struct {
		name    string
		oldName string
		newName string
		open    bool
		wantErr error
	}{
		{name: "rename", oldName: "a", newName: "c"},
		{name: "same name", oldName: "a", newName: "a"},
		{name: "missing file", oldName: "x", newName: "c", wantErr: ErrNotFound},
		{name: "target exists", oldName: "a", newName: "b", wantErr: ErrAlreadyExists},
		{name: "invalid target", oldName: "a", newName: "", wantErr: ErrInvalidName},
		{name: "open file", oldName: "a", newName: "c", open: true, wantErr: ErrBusy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vol, _ := testingNew(t, 10)
			require.NoError(t, vol.Create("a"))
			require.NoError(t, vol.Create("b"))
			if tt.open {
				_, err := vol.Open(tt.oldName)
				require.NoError(t, err)
			}

			err := vol.Rename(tt.oldName, tt.newName)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Volume.Rename() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			_, err = vol.Lookup(tt.newName)
			assert.NoError(t, err)
		})
	}
}

func TestVolume_List(t *testing.T) {
	vol, _ := testingNew(t, 10)

	files, err := vol.List()
	require.NoError(t, err)
	assert.Empty(t, files)

	require.NoError(t, vol.Create("a"))
	require.NoError(t, vol.Create("b"))
	id, err := vol.Open("b")
	require.NoError(t, err)
	_, err = vol.Write(id, []byte("hello"))
	require.NoError(t, err)

	files, err = vol.List()
	require.NoError(t, err)
	assert.Equal(t, []FileEntry{{Name: "a", Size: 0}, {Name: "b", Size: 5}}, files)
}

func TestVolume_Chain(t *testing.T) {
	vol, _ := testingNew(t, 10)
	require.NoError(t, vol.Create("a"))

	blocks, err := vol.Chain("a")
	require.NoError(t, err)
	assert.Empty(t, blocks)

	id, err := vol.Open("a")
	require.NoError(t, err)
	_, err = vol.Write(id, make([]byte, 3*4096))
	require.NoError(t, err)

	blocks, err = vol.Chain("a")
	require.NoError(t, err)
	assert.Equal(t, []uint16{1, 2, 3}, blocks)
}

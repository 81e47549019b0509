package ecsfs

import (
	"fmt"

	"github.com/aligator/ecsfs/checkpoint"
	"github.com/aligator/ecsfs/disk"
)

// FileEntry is a file as listed in the root directory.
type FileEntry struct {
	Name string
	Size uint32
}

func (v *Volume) loadDir() (*dirBlock, error) {
	buf := make([]byte, disk.BlockSize)
	if err := v.dev.ReadBlock(int(v.sb.RootDirBlock), buf); err != nil {
		return nil, checkpoint.Wrap(err, ErrIO)
	}
	return decodeDirBlock(buf)
}

func (v *Volume) storeDir(dir *dirBlock) error {
	buf, err := dir.encode()
	if err != nil {
		return err
	}
	return checkpoint.Wrap(v.dev.WriteBlock(int(v.sb.RootDirBlock), buf), ErrIO)
}

// validName rejects names which do not fit a slot with their terminating NUL.
func validName(name string) error {
	if name == "" {
		return checkpoint.Wrap(fmt.Errorf("empty name"), ErrInvalidName)
	}
	if len(name) >= FilenameLen {
		return checkpoint.Wrap(fmt.Errorf("%q is longer than %d bytes", name, FilenameLen-1), ErrInvalidName)
	}
	for i := 0; i < len(name); i++ {
		if name[i] == 0 {
			return checkpoint.Wrap(fmt.Errorf("%q contains NUL", name), ErrInvalidName)
		}
	}
	return nil
}

// lookup returns the loaded directory and the slot holding name.
func (v *Volume) lookup(name string) (*dirBlock, int, error) {
	if err := validName(name); err != nil {
		return nil, -1, err
	}

	dir, err := v.loadDir()
	if err != nil {
		return nil, -1, err
	}

	slot := dir.find(name)
	if slot < 0 {
		return dir, -1, checkpoint.Wrap(fmt.Errorf("%q", name), ErrNotFound)
	}
	return dir, slot, nil
}

// Create adds an empty file called name in the lowest free slot.
func (v *Volume) Create(name string) error {
	if err := v.checkMounted(); err != nil {
		return err
	}
	if err := validName(name); err != nil {
		return err
	}

	dir, err := v.loadDir()
	if err != nil {
		return err
	}

	if dir.find(name) >= 0 {
		return checkpoint.Wrap(fmt.Errorf("%q", name), ErrAlreadyExists)
	}

	slot := dir.firstFree()
	if slot < 0 {
		return checkpoint.Wrap(fmt.Errorf("%d files", MaxFiles), ErrDirectoryFull)
	}

	dir[slot] = DirEntry{FirstBlock: EOC}
	dir[slot].setName(name)
	if err := v.storeDir(dir); err != nil {
		return err
	}

	v.log.WithField("file", name).WithField("slot", slot).Debug("created file")
	return nil
}

// Delete removes the file called name and frees its blocks.
// A file which is still open cannot be deleted.
func (v *Volume) Delete(name string) error {
	if err := v.checkMounted(); err != nil {
		return err
	}

	dir, slot, err := v.lookup(name)
	if err != nil {
		return err
	}

	if v.fds.references(slot) {
		return checkpoint.Wrap(fmt.Errorf("%q", name), ErrBusy)
	}

	freed := 0
	if dir[slot].FirstBlock != EOC {
		freed, err = v.fat.free(dir[slot].FirstBlock)
		if err != nil {
			return err
		}
	}

	dir[slot] = DirEntry{}
	if err := v.storeDir(dir); err != nil {
		return err
	}

	v.log.WithField("file", name).WithField("blocks", freed).Debug("deleted file")
	return nil
}

// Rename changes the name of a file. A file which is open cannot be renamed.
func (v *Volume) Rename(oldName, newName string) error {
	if err := v.checkMounted(); err != nil {
		return err
	}
	if err := validName(newName); err != nil {
		return err
	}

	dir, slot, err := v.lookup(oldName)
	if err != nil {
		return err
	}

	if oldName == newName {
		return nil
	}
	if dir.find(newName) >= 0 {
		return checkpoint.Wrap(fmt.Errorf("%q", newName), ErrAlreadyExists)
	}
	if v.fds.references(slot) {
		return checkpoint.Wrap(fmt.Errorf("%q", oldName), ErrBusy)
	}

	dir[slot].setName(newName)
	return v.storeDir(dir)
}

// List returns every file in slot order.
func (v *Volume) List() ([]FileEntry, error) {
	if err := v.checkMounted(); err != nil {
		return nil, err
	}

	dir, err := v.loadDir()
	if err != nil {
		return nil, err
	}

	var files []FileEntry
	for i := range dir {
		if dir[i].IsFree() {
			continue
		}
		files = append(files, FileEntry{Name: dir[i].Name(), Size: dir[i].FileSize})
	}
	return files, nil
}

// Lookup returns the directory entry of the file called name.
func (v *Volume) Lookup(name string) (DirEntry, error) {
	if err := v.checkMounted(); err != nil {
		return DirEntry{}, err
	}

	dir, slot, err := v.lookup(name)
	if err != nil {
		return DirEntry{}, err
	}
	return dir[slot], nil
}

// Chain returns the data blocks of the file called name in file order.
func (v *Volume) Chain(name string) ([]uint16, error) {
	entry, err := v.Lookup(name)
	if err != nil {
		return nil, err
	}
	if entry.FirstBlock == EOC {
		return nil, nil
	}
	return v.fat.chain(entry.FirstBlock)
}

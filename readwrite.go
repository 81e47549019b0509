package ecsfs

import (
	"fmt"

	"github.com/aligator/ecsfs/checkpoint"
	"github.com/aligator/ecsfs/disk"
)

// Open returns a new descriptor for the file called name, positioned at offset 0.
// Every call gets its own cursor, even for the same file.
func (v *Volume) Open(name string) (int, error) {
	if err := v.checkMounted(); err != nil {
		return -1, err
	}

	_, slot, err := v.lookup(name)
	if err != nil {
		return -1, err
	}
	return v.fds.open(slot)
}

// Close releases the descriptor id.
func (v *Volume) Close(id int) error {
	if err := v.checkMounted(); err != nil {
		return err
	}
	return v.fds.close(id)
}

// descriptor returns the in-use descriptor id and the directory entry it targets.
func (v *Volume) descriptor(id int) (*descriptor, *dirBlock, error) {
	if err := v.checkMounted(); err != nil {
		return nil, nil, err
	}

	fd, err := v.fds.get(id)
	if err != nil {
		return nil, nil, err
	}

	dir, err := v.loadDir()
	if err != nil {
		return nil, nil, err
	}
	return fd, dir, nil
}

// Stat returns the current size of the file open as id.
func (v *Volume) Stat(id int) (int64, error) {
	fd, dir, err := v.descriptor(id)
	if err != nil {
		return 0, err
	}
	return int64(dir[fd.slot].FileSize), nil
}

// Seek moves the cursor of id to offset. Seeking to the end of the file is allowed,
// seeking past it is not.
func (v *Volume) Seek(id int, offset int64) error {
	fd, dir, err := v.descriptor(id)
	if err != nil {
		return err
	}

	size := int64(dir[fd.slot].FileSize)
	if offset < 0 || offset > size {
		return checkpoint.Wrap(fmt.Errorf("offset %d, size %d", offset, size), ErrOutOfRange)
	}

	fd.offset = offset
	return nil
}

// Offset returns the cursor of id.
func (v *Volume) Offset(id int) (int64, error) {
	if err := v.checkMounted(); err != nil {
		return 0, err
	}

	fd, err := v.fds.get(id)
	if err != nil {
		return 0, err
	}
	return fd.offset, nil
}

func (v *Volume) readData(block uint16, buf []byte) error {
	return checkpoint.Wrap(v.dev.ReadBlock(int(v.sb.DataStart)+int(block), buf), ErrIO)
}

func (v *Volume) writeData(block uint16, buf []byte) error {
	return checkpoint.Wrap(v.dev.WriteBlock(int(v.sb.DataStart)+int(block), buf), ErrIO)
}

// Write copies p into the file open as id at its cursor, extending the block chain
// as needed, and advances the cursor.
//
// Running out of free blocks is not an error: Write then returns how many bytes fit.
// On a device error the bytes written so far are still accounted for.
func (v *Volume) Write(id int, p []byte) (int, error) {
	fd, dir, err := v.descriptor(id)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, checkpoint.Wrap(fmt.Errorf("nil buffer"), ErrInvalidArgument)
	}
	if len(p) == 0 {
		return 0, nil
	}

	entry := &dir[fd.slot]
	log := v.log.WithField("file", entry.Name())

	// Blocks allocated by this call hold stale data and must not be read.
	fresh := make(map[uint16]bool)

	if entry.FirstBlock == EOC {
		block, ok, err := v.fat.allocate()
		if err != nil {
			return 0, err
		}
		if !ok {
			log.Warn("no free block, nothing written")
			return 0, nil
		}

		entry.FirstBlock = block
		fresh[block] = true
		if err := v.storeDir(dir); err != nil {
			return 0, err
		}
	}

	// Walk to the block holding the cursor, extending the chain on the way.
	block := entry.FirstBlock
	for i := int64(0); i < fd.offset/disk.BlockSize; i++ {
		next, err := v.fat.next(block)
		if err != nil {
			return 0, err
		}

		if next == EOC {
			var ok bool
			next, ok, err = v.fat.extend(block)
			if err != nil {
				return 0, err
			}
			if !ok {
				log.Warn("no free block, nothing written")
				return 0, nil
			}
			fresh[next] = true
		}
		block = next
	}

	pos := int(fd.offset % disk.BlockSize)
	written := 0
	buf := make([]byte, disk.BlockSize)

	for written < len(p) {
		n := disk.BlockSize - pos
		if n > len(p)-written {
			n = len(p) - written
		}

		if n == disk.BlockSize || fresh[block] {
			clear(buf)
		} else if err = v.readData(block, buf); err != nil {
			break
		}

		copy(buf[pos:], p[written:written+n])
		if err = v.writeData(block, buf); err != nil {
			break
		}
		written += n
		pos = 0

		if written == len(p) {
			break
		}

		var next uint16
		next, err = v.fat.next(block)
		if err != nil {
			break
		}
		if next == EOC {
			var ok bool
			next, ok, err = v.fat.extend(block)
			if err != nil {
				break
			}
			if !ok {
				log.WithField("written", written).Warn("no free block, short write")
				break
			}
			fresh[next] = true
		}
		block = next
	}

	fd.offset += int64(written)
	if fd.offset > int64(entry.FileSize) {
		entry.FileSize = uint32(fd.offset)
		if storeErr := v.storeDir(dir); storeErr != nil && err == nil {
			err = storeErr
		}
	}
	return written, err
}

// Read copies up to len(p) bytes from the file open as id at its cursor and advances
// the cursor. It returns 0 once the cursor reaches the end of the file.
func (v *Volume) Read(id int, p []byte) (int, error) {
	fd, dir, err := v.descriptor(id)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, checkpoint.Wrap(fmt.Errorf("nil buffer"), ErrInvalidArgument)
	}

	entry := &dir[fd.slot]
	size := int64(entry.FileSize)
	if fd.offset >= size {
		return 0, nil
	}

	count := len(p)
	if int64(count) > size-fd.offset {
		count = int(size - fd.offset)
	}

	block := entry.FirstBlock
	for i := int64(0); i < fd.offset/disk.BlockSize && block != EOC; i++ {
		if block, err = v.fat.next(block); err != nil {
			return 0, err
		}
	}
	if block == EOC {
		return 0, nil
	}

	pos := int(fd.offset % disk.BlockSize)
	read := 0
	buf := make([]byte, disk.BlockSize)

	for read < count && block != EOC {
		if err = v.readData(block, buf); err != nil {
			break
		}

		n := copy(p[read:count], buf[pos:])
		read += n
		pos = 0

		if read < count {
			if block, err = v.fat.next(block); err != nil {
				break
			}
		}
	}

	fd.offset += int64(read)
	return read, err
}

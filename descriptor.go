package ecsfs

import (
	"fmt"

	"github.com/aligator/ecsfs/checkpoint"
)

// descriptor binds an open file to a byte cursor.
type descriptor struct {
	used   bool
	offset int64
	slot   int // root directory slot of the file
}

// descriptorTable is the fixed capacity table of open files.
// It lives in memory only and is reset on every mount.
type descriptorTable struct {
	fds []descriptor
}

func newDescriptorTable(capacity int) *descriptorTable {
	return &descriptorTable{fds: make([]descriptor, capacity)}
}

func (t *descriptorTable) reset() {
	for i := range t.fds {
		t.fds[i] = descriptor{}
	}
}

// open binds the lowest free descriptor to slot at offset 0.
func (t *descriptorTable) open(slot int) (int, error) {
	for id := range t.fds {
		if !t.fds[id].used {
			t.fds[id] = descriptor{used: true, slot: slot}
			return id, nil
		}
	}
	return -1, checkpoint.Wrap(fmt.Errorf("%d descriptors in use", len(t.fds)), ErrTooManyOpen)
}

// get returns the descriptor id if it is in use.
func (t *descriptorTable) get(id int) (*descriptor, error) {
	if id < 0 || id >= len(t.fds) || !t.fds[id].used {
		return nil, checkpoint.Wrap(fmt.Errorf("descriptor %d", id), ErrBadDescriptor)
	}
	return &t.fds[id], nil
}

func (t *descriptorTable) close(id int) error {
	if _, err := t.get(id); err != nil {
		return err
	}
	t.fds[id] = descriptor{}
	return nil
}

// references reports whether any descriptor is open on slot.
func (t *descriptorTable) references(slot int) bool {
	for _, fd := range t.fds {
		if fd.used && fd.slot == slot {
			return true
		}
	}
	return false
}

func (t *descriptorTable) inUse() int {
	n := 0
	for _, fd := range t.fds {
		if fd.used {
			n++
		}
	}
	return n
}

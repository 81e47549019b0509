package ecsfs

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/afero"
)

// These errors may occur while using a volume. Check for them with errors.Is.
var (
	ErrIO              = errors.New("device i/o failed")
	ErrNotMounted      = errors.New("volume is not mounted")
	ErrBadFormat       = errors.New("not a valid volume")
	ErrInvalidName     = fmt.Errorf("invalid file name: %w", fs.ErrInvalid)
	ErrAlreadyExists   = fmt.Errorf("file already exists: %w", fs.ErrExist)
	ErrNotFound        = fmt.Errorf("file not found: %w", fs.ErrNotExist)
	ErrDirectoryFull   = errors.New("root directory is full")
	ErrTooManyOpen     = errors.New("too many open files")
	ErrBadDescriptor   = fmt.Errorf("bad file descriptor: %w", fs.ErrClosed)
	ErrOutOfRange      = fmt.Errorf("offset beyond end of file: %w", afero.ErrOutOfRange)
	ErrBusy            = errors.New("file is open")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCorruptChain    = errors.New("corrupt block chain")
	ErrNotSupported    = errors.New("operation not supported")
)

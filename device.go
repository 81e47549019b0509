package ecsfs

// Device is the block storage a volume lives on.
// *disk.Disk implements it.
// Generated mock using mockgen:
//  mockgen -source=device.go -destination=device_mock.go -package ecsfs
type Device interface {
	// BlockCount returns the number of blocks, or -1 if the device is closed.
	BlockCount() int
	// ReadBlock fills buf, which is exactly one block long, with block index.
	ReadBlock(index int, buf []byte) error
	// WriteBlock stores buf, which is exactly one block long, as block index.
	WriteBlock(index int, buf []byte) error
	Close() error
}

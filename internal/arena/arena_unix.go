//go:build unix

package arena

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// mapRegion maps size bytes of anonymous private memory.
func mapRegion(size int, lock bool) (*Region, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("arena: mmap %d bytes: %w", size, err)
	}
	locked := false
	if lock {
		if err := unix.Mlock(data); err != nil {
			_ = unix.Munmap(data)
			return nil, fmt.Errorf("arena: mlock %d bytes: %w", size, err)
		}
		locked = true
	}
	release := func() error {
		if locked {
			_ = unix.Munlock(data)
		}
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return &Region{data: data, backing: Mmap, release: release}, nil
}

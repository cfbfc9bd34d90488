//go:build !unix

package arena

// mapRegion falls back to heap memory where mmap is not available.
func mapRegion(size int, _ bool) (*Region, error) {
	return heapRegion(size), nil
}

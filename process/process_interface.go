package process

import (
	"eternalredirect/process/memory_map"
)

// Image is a loaded module image that can be walked region by region.
// The scanner only ever reads through this interface, so the same code
// runs against the live host process and against a file mapped into a blob.
type Image interface {
	// Base returns the load address of the module
	Base() ProcessMemoryAddress

	// QueryRegion returns the memory region containing addr
	QueryRegion(addr ProcessMemoryAddress) (memory_map.MemoryMapItem, error)

	// ReadMemory reads size bytes starting at addr
	ReadMemory(addr ProcessMemoryAddress, size ProcessMemorySize) ([]byte, error)
}

package memory_map

import (
	"fmt"
	"sort"
)

// MemoryMapItem represents a memory region in a process's address space
type MemoryMapItem struct {
	Address uint64 // The starting address of the memory region
	Size    uint   // The size of the memory region in bytes
	Perms   string // Permissions (e.g., "r-x" for read, execute)
}

// String returns a string representation of the memory map item
func (mmItem MemoryMapItem) String() string {
	return fmt.Sprintf("Address: %x, Size: %d, Perms: %s", mmItem.Address, mmItem.Size, mmItem.Perms)
}

// End returns the first address past the region
func (mmItem MemoryMapItem) End() uint64 {
	return mmItem.Address + uint64(mmItem.Size)
}

func (mmItem MemoryMapItem) IsReadable() bool {
	return len(mmItem.Perms) > 0 && mmItem.Perms[0] == 'r'
}

func (mmItem MemoryMapItem) IsExecutable() bool {
	return len(mmItem.Perms) > 2 && mmItem.Perms[2] == 'x'
}

// IsAccessible reports whether code or data in the region can be read.
// A module image ends at the first region that is neither.
func (mmItem MemoryMapItem) IsAccessible() bool {
	return mmItem.Size > 0 && (mmItem.IsReadable() || mmItem.IsExecutable())
}

// Page protection values as reported by VirtualQuery.
const (
	PAGE_NOACCESS          = 0x01
	PAGE_READONLY          = 0x02
	PAGE_READWRITE         = 0x04
	PAGE_WRITECOPY         = 0x08
	PAGE_EXECUTE           = 0x10
	PAGE_EXECUTE_READ      = 0x20
	PAGE_EXECUTE_READWRITE = 0x40
	PAGE_EXECUTE_WRITECOPY = 0x80
	PAGE_GUARD             = 0x100

	MEM_COMMIT = 0x1000
)

// PermsFromProtect converts a page protection value into the "rwx" form
// used by MemoryMapItem. Uncommitted and guard pages map to "---".
func PermsFromProtect(state, protect uint32) string {
	if state != MEM_COMMIT || protect&PAGE_GUARD != 0 || protect&PAGE_NOACCESS != 0 {
		return "---"
	}

	perms := []byte("---")
	switch protect & 0xFF {
	case PAGE_READONLY:
		perms[0] = 'r'
	case PAGE_READWRITE, PAGE_WRITECOPY:
		perms[0], perms[1] = 'r', 'w'
	case PAGE_EXECUTE:
		perms[2] = 'x'
	case PAGE_EXECUTE_READ:
		perms[0], perms[2] = 'r', 'x'
	case PAGE_EXECUTE_READWRITE, PAGE_EXECUTE_WRITECOPY:
		perms[0], perms[1], perms[2] = 'r', 'w', 'x'
	}
	return string(perms)
}

// FindRegion returns the region containing addr. memoryMap must be sorted by address.
func FindRegion(addr uint64, memoryMap []MemoryMapItem) *MemoryMapItem {
	i := sort.Search(len(memoryMap), func(i int) bool {
		return memoryMap[i].End() > addr
	})
	if i < len(memoryMap) && memoryMap[i].Address <= addr {
		return &memoryMap[i]
	}

	return nil
}

// SortRegions orders regions by start address
func SortRegions(memoryMap []MemoryMapItem) {
	sort.Slice(memoryMap, func(i, j int) bool {
		return memoryMap[i].Address < memoryMap[j].Address
	})
}

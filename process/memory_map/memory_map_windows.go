//go:build windows

package memory_map

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// QueryRegion describes the region of the current process containing addr
func QueryRegion(addr uintptr) (MemoryMapItem, error) {
	var info windows.MemoryBasicInformation
	if err := windows.VirtualQuery(addr, &info, unsafe.Sizeof(info)); err != nil {
		return MemoryMapItem{}, fmt.Errorf("VirtualQuery(0x%x) failed: %w", addr, err)
	}

	return MemoryMapItem{
		Address: uint64(info.BaseAddress),
		Size:    uint(info.RegionSize),
		Perms:   PermsFromProtect(info.State, info.Protect),
	}, nil
}

package process_blob

import (
	"fmt"

	"eternalredirect/process"
	"eternalredirect/process/memory_map"
)

type region struct {
	item memory_map.MemoryMapItem
	data []byte
}

// ProcessBlob is a module image backed by byte slices. It is used to scan
// executables read from disk and to exercise the scanner in tests.
type ProcessBlob struct {
	baseaddress process.ProcessMemoryAddress
	regions     []region
}

var _ process.Image = (*ProcessBlob)(nil)

// NewProcessBlob creates an image with a single readable and executable
// region holding data at baseAddress.
func NewProcessBlob(baseAddress process.ProcessMemoryAddress, data []byte) *ProcessBlob {
	p := &ProcessBlob{baseaddress: baseAddress}
	p.Map(baseAddress, data, "r-x")
	return p
}

// NewEmpty creates an image with nothing mapped yet
func NewEmpty(baseAddress process.ProcessMemoryAddress) *ProcessBlob {
	return &ProcessBlob{baseaddress: baseAddress}
}

// Map adds a region at addr. Regions must not overlap.
func (p *ProcessBlob) Map(addr process.ProcessMemoryAddress, data []byte, perms string) {
	r := region{
		item: memory_map.MemoryMapItem{Address: uint64(addr), Size: uint(len(data)), Perms: perms},
		data: data,
	}

	i := len(p.regions)
	for i > 0 && p.regions[i-1].item.Address > r.item.Address {
		i--
	}
	p.regions = append(p.regions, region{})
	copy(p.regions[i+1:], p.regions[i:])
	p.regions[i] = r
}

func (p *ProcessBlob) Base() process.ProcessMemoryAddress {
	return p.baseaddress
}

// MemoryMap returns the regions in address order
func (p *ProcessBlob) MemoryMap() []memory_map.MemoryMapItem {
	result := make([]memory_map.MemoryMapItem, len(p.regions))
	for i, r := range p.regions {
		result[i] = r.item
	}
	return result
}

func (p *ProcessBlob) find(addr process.ProcessMemoryAddress) (int, bool) {
	for i, r := range p.regions {
		if uint64(addr) >= r.item.Address && uint64(addr) < r.item.End() {
			return i, true
		}
	}
	return 0, false
}

// QueryRegion behaves like VirtualQuery: an unmapped address yields a
// "---" region reaching up to the next mapped region.
func (p *ProcessBlob) QueryRegion(addr process.ProcessMemoryAddress) (memory_map.MemoryMapItem, error) {
	if i, ok := p.find(addr); ok {
		return p.regions[i].item, nil
	}

	for _, r := range p.regions {
		if r.item.Address > uint64(addr) {
			return memory_map.MemoryMapItem{
				Address: uint64(addr),
				Size:    uint(r.item.Address - uint64(addr)),
				Perms:   "---",
			}, nil
		}
	}

	return memory_map.MemoryMapItem{}, fmt.Errorf("query 0x%x: %w", uint64(addr), process.ErrAddressNotMapped)
}

// ReadMemory reads size bytes at addr. The read may span several
// regions as long as they are contiguous.
func (p *ProcessBlob) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	i, ok := p.find(addr)
	if !ok {
		return nil, fmt.Errorf("read 0x%x: %w", uint64(addr), process.ErrAddressNotMapped)
	}

	r := p.regions[i]
	offset := uint64(addr) - r.item.Address
	if offset+uint64(size) <= uint64(len(r.data)) {
		return r.data[offset : offset+uint64(size)], nil
	}

	result := make([]byte, 0, size)
	cursor := uint64(addr)
	remaining := uint64(size)
	for ; i < len(p.regions) && remaining > 0; i++ {
		r = p.regions[i]
		if r.item.Address != cursor && cursor != uint64(addr) {
			break
		}
		start := cursor - r.item.Address
		n := uint64(len(r.data)) - start
		if n > remaining {
			n = remaining
		}
		result = append(result, r.data[start:start+n]...)
		cursor += n
		remaining -= n
	}

	if remaining > 0 {
		return nil, fmt.Errorf("read 0x%x+%d: %w", uint64(addr), size, process.ErrOutOfBounds)
	}
	return result, nil
}

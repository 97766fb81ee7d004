//go:build windows

package process_windows

import (
	"fmt"
	"path/filepath"

	"eternalredirect/coloransi"
	"eternalredirect/process"
	"eternalredirect/process/memory_map"

	"github.com/Moonlight-Companies/gologger/logger"
	"golang.org/x/sys/windows"
)

// SelfImage is the main executable module of the current process
type SelfImage struct {
	base   process.ProcessMemoryAddress
	handle windows.Handle
	log    *logger.Logger
}

var _ process.Image = (*SelfImage)(nil)

// Open returns the image of the executable that started the process
func Open() (*SelfImage, error) {
	var module windows.Handle
	if err := windows.GetModuleHandleEx(0, nil, &module); err != nil {
		return nil, fmt.Errorf("GetModuleHandleEx failed: %w", err)
	}

	path := "unknown"
	buf := make([]uint16, windows.MAX_LONG_PATH)
	if n, err := windows.GetModuleFileName(module, &buf[0], uint32(len(buf))); err == nil {
		path = windows.UTF16ToString(buf[:n])
	}

	p := &SelfImage{
		base:   process.ProcessMemoryAddress(module),
		handle: windows.CurrentProcess(),
		log:    logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "image-"+filepath.Base(path))),
	}
	p.log.Infoln("Image base", p.base.ToString())

	return p, nil
}

func (p *SelfImage) Base() process.ProcessMemoryAddress {
	return p.base
}

func (p *SelfImage) QueryRegion(addr process.ProcessMemoryAddress) (memory_map.MemoryMapItem, error) {
	return memory_map.QueryRegion(uintptr(addr))
}

// ReadMemory copies through ReadProcessMemory on the current process so a
// page that disappears under us fails the call instead of faulting.
func (p *SelfImage) ReadMemory(addr process.ProcessMemoryAddress, size process.ProcessMemorySize) ([]byte, error) {
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	var bytesRead uintptr
	if err := windows.ReadProcessMemory(p.handle, uintptr(addr), &buf[0], uintptr(size), &bytesRead); err != nil {
		return nil, fmt.Errorf("ReadProcessMemory(%s) failed: %w", addr.ToString(), err)
	}

	if bytesRead != uintptr(size) {
		return nil, fmt.Errorf("read incomplete: expected %d, got %d", size, bytesRead)
	}

	return buf, nil
}

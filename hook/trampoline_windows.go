//go:build windows

package hook

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modkernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procFlushInstructionCache = modkernel32.NewProc("FlushInstructionCache")
)

type trampolinePatch struct {
	target     uintptr
	trampoline uintptr
	original   []byte
	detour     []byte
}

func (p *trampolinePatch) Target() uintptr     { return p.target }
func (p *trampolinePatch) Trampoline() uintptr { return p.trampoline }

// TrampolineInstaller hooks functions in the current process by moving
// their prologue into an executable trampoline and writing a jump in its
// place. Prologues must not contain rip-relative instructions.
//
// Other threads are neither suspended nor have their instruction pointers
// checked while the jump is written. Commit and Revert assume no thread is
// executing inside a target's prologue at the time, which holds while the
// game is still starting up and while the module is unloading.
type TrampolineInstaller struct{}

var _ Installer = TrampolineInstaller{}

// writeMemory writes the given bytes to the specified address.
func writeMemory(address uintptr, data []byte) error {
	var oldProtect uint32
	if err := windows.VirtualProtect(address, uintptr(len(data)), windows.PAGE_EXECUTE_READWRITE, &oldProtect); err != nil {
		return fmt.Errorf("VirtualProtect failed: %w", err)
	}

	copy(unsafe.Slice((*byte)(unsafe.Pointer(address)), len(data)), data)

	if err := windows.VirtualProtect(address, uintptr(len(data)), oldProtect, &oldProtect); err != nil {
		return fmt.Errorf("VirtualProtect failed to restore: %w", err)
	}

	procFlushInstructionCache.Call(uintptr(windows.CurrentProcess()), address, uintptr(len(data)))
	return nil
}

func (TrampolineInstaller) Prepare(target, detour uintptr, prologue int) (Patch, error) {
	detourCode, err := DetourBytes(detour, prologue)
	if err != nil {
		return nil, err
	}

	original := make([]byte, prologue)
	copy(original, unsafe.Slice((*byte)(unsafe.Pointer(target)), prologue))

	code := TrampolineBytes(target, original)
	mem, err := windows.VirtualAlloc(0, uintptr(len(code)), windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_EXECUTE_READWRITE)
	if err != nil {
		return nil, fmt.Errorf("VirtualAlloc failed: %w", err)
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(mem)), len(code)), code)

	return &trampolinePatch{
		target:     target,
		trampoline: mem,
		original:   original,
		detour:     detourCode,
	}, nil
}

func (TrampolineInstaller) Commit(patches []Patch) error {
	return apply(patches, func(p *trampolinePatch) []byte { return p.detour }, func(p *trampolinePatch) []byte { return p.original })
}

func (TrampolineInstaller) Revert(patches []Patch) error {
	return apply(patches, func(p *trampolinePatch) []byte { return p.original }, func(p *trampolinePatch) []byte { return p.detour })
}

func (TrampolineInstaller) Release(patch Patch) {
	p, ok := patch.(*trampolinePatch)
	if !ok || p.trampoline == 0 {
		return
	}
	windows.VirtualFree(p.trampoline, 0, windows.MEM_RELEASE)
	p.trampoline = 0
}

// apply writes forward() for every patch, undoing with backward() on failure
func apply(patches []Patch, forward, backward func(*trampolinePatch) []byte) error {
	var done []*trampolinePatch

	for _, patch := range patches {
		p, ok := patch.(*trampolinePatch)
		if !ok {
			err := errors.New("foreign patch type")
			undo(done, backward)
			return err
		}

		if err := writeMemory(p.target, forward(p)); err != nil {
			undo(done, backward)
			return fmt.Errorf("patch 0x%x: %w", p.target, err)
		}
		done = append(done, p)
	}

	return nil
}

func undo(done []*trampolinePatch, backward func(*trampolinePatch) []byte) {
	for i := len(done) - 1; i >= 0; i-- {
		writeMemory(done[i].target, backward(done[i]))
	}
}

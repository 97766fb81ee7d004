package hook

import "encoding/binary"

// JumpSize is the length of the absolute jump written over a prologue:
// jmp qword ptr [rip+0] followed by the 8 byte destination.
const JumpSize = 14

// AbsoluteJump encodes a jump to dst
func AbsoluteJump(dst uintptr) []byte {
	code := make([]byte, JumpSize)
	code[0], code[1] = 0xFF, 0x25
	binary.LittleEndian.PutUint64(code[6:], uint64(dst))
	return code
}

// DetourBytes is the patch written at a hooked function: a jump to detour
// padded with int3 up to the prologue length.
func DetourBytes(detour uintptr, prologue int) ([]byte, error) {
	if prologue < JumpSize {
		return nil, ErrPrologueTooShort
	}

	code := AbsoluteJump(detour)
	for len(code) < prologue {
		code = append(code, 0xCC)
	}
	return code, nil
}

// TrampolineBytes is the moved prologue followed by a jump back to the
// first instruction after it.
func TrampolineBytes(target uintptr, prologue []byte) []byte {
	code := make([]byte, 0, len(prologue)+JumpSize)
	code = append(code, prologue...)
	return append(code, AbsoluteJump(target+uintptr(len(prologue)))...)
}

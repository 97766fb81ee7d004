package lifecycle

import (
	"eternalredirect/hook"
	"eternalredirect/process"
)

// Hook names, as they appear in logs
const (
	DrawHook    = "DrawFormatVStringToHandle"
	CopyHook    = "CopyFunc"
	MeasureHook = "GetDrawFormatStringWidth"
)

var (
	// push rbx; push rbp; push rsi; push r14; push r15; sub rsp, imm32
	DrawSignature = process.Exact(0x40, 0x53, 0x55, 0x56, 0x41, 0x56, 0x41, 0x57, 0x48, 0x81)

	// mov [rsp+10h], rbx; push rdi; sub rsp, 20h; mov rdi, rcx; mov rbx, imm32
	CopySignature = process.Exact(0x48, 0x89, 0x5C, 0x24, 0x10, 0x57, 0x48, 0x83, 0xEC, 0x20, 0x48, 0x8B, 0xF9, 0x48, 0xC7, 0xC3)

	// spill rcx, rdx, r8, r9 to the home area; push rbx; push rsi
	MeasureSignature = process.Exact(0x48, 0x89, 0x4C, 0x24, 0x08, 0x48, 0x89, 0x54, 0x24, 0x10, 0x4C, 0x89, 0x44, 0x24, 0x18, 0x4C, 0x89, 0x4C, 0x24, 0x20, 0x53, 0x56)
)

// Prologue lengths: whole instructions covering at least hook.JumpSize bytes
const (
	DrawPrologue    = 15
	CopyPrologue    = 20
	MeasurePrologue = 15
)

// Detours are the replacement entry points and the cells that receive
// the trampoline addresses used to call the originals.
type Detours struct {
	Draw, Copy, Measure                         uintptr
	DrawOriginal, CopyOriginal, MeasureOriginal *uintptr
}

// Slots builds the three hook slots in installation order
func Slots(d Detours) []*hook.Slot {
	return []*hook.Slot{
		{Name: DrawHook, Signature: DrawSignature, Prologue: DrawPrologue, Detour: d.Draw, Original: d.DrawOriginal},
		{Name: CopyHook, Signature: CopySignature, Prologue: CopyPrologue, Detour: d.Copy, Original: d.CopyOriginal},
		{Name: MeasureHook, Signature: MeasureSignature, Prologue: MeasurePrologue, Detour: d.Measure, Original: d.MeasureOriginal},
	}
}

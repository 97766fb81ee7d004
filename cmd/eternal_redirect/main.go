//go:build windows && cgo

// Command eternal_redirect builds the translation DLL:
//
//	go build -buildmode=c-shared -o EternalRedirect.dll ./cmd/eternal_redirect
package main

/*
#include "shim.h"
*/
import "C"

import (
	"sync/atomic"
	"unsafe"

	"eternalredirect/config"
	"eternalredirect/hook"
	"eternalredirect/lifecycle"
	"eternalredirect/process_windows"
	"eternalredirect/redirect"
	"eternalredirect/sjis"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	module atomic.Pointer[lifecycle.Module]
	log    = logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "eternal-redirect"))
)

func detours() lifecycle.Detours {
	return lifecycle.Detours{
		Draw:            uintptr(C.er_detour_draw()),
		Copy:            uintptr(C.er_detour_copy()),
		Measure:         uintptr(C.er_detour_measure()),
		DrawOriginal:    (*uintptr)(unsafe.Pointer(&C.Real_DrawFormatVStringToHandle)),
		CopyOriginal:    (*uintptr)(unsafe.Pointer(&C.Real_CopyFunc)),
		MeasureOriginal: (*uintptr)(unsafe.Pointer(&C.Real_GetDrawFormatStringWidth)),
	}
}

func cstring(text []byte) *C.char {
	buf := sjis.CString(text)
	return (*C.char)(unsafe.Pointer(&buf[0]))
}

func bindOriginals(set *hook.Set) redirect.Originals {
	var o redirect.Originals

	if set.IsAttached(lifecycle.DrawHook) {
		o.Draw = func(x, y int32, color uint32, font int32, text []byte) int32 {
			return int32(C.er_call_draw(C.int(x), C.int(y), C.uint(color), C.int(font), cstring(text)))
		}
	}

	if set.IsAttached(lifecycle.CopyHook) {
		// src is always followed by a NUL byte
		o.Copy = func(ctx unsafe.Pointer, src []byte, size int64) unsafe.Pointer {
			return C.er_call_copy(ctx, (*C.uint8_t)(unsafe.Pointer(unsafe.SliceData(src))), C.int64_t(size))
		}
	}

	if set.IsAttached(lifecycle.MeasureHook) {
		o.Measure = func(text []byte) int64 {
			return int64(C.er_call_measure(cstring(text)))
		}
	}

	return o
}

//export erProcessAttach
func erProcessAttach() {
	img, err := process_windows.Open()
	if err != nil {
		log.Warn("Unable to open the game image: ", err)
		return
	}

	m := lifecycle.New(config.FromEnv(), img, hook.TrampolineInstaller{}, detours(), bindOriginals)
	module.Store(m)
	m.ProcessAttach()
}

//export erProcessDetach
func erProcessDetach() {
	if m := module.Load(); m != nil {
		m.ProcessDetach()
	}
}

//export erThreadAttach
func erThreadAttach() {
	if m := module.Load(); m != nil {
		m.ThreadAttach()
	}
}

//export erThreadDetach
func erThreadDetach() {
	if m := module.Load(); m != nil {
		m.ThreadDetach()
	}
}

func redirector() *redirect.Redirector {
	if m := module.Load(); m != nil {
		return m.Redirector()
	}
	return nil
}

//export erDraw
func erDraw(x, y C.int, color C.uint, font C.int, text *C.char, n C.int) C.int {
	r := redirector()
	if r == nil {
		return C.er_call_draw(x, y, color, font, text)
	}

	formatted := unsafe.Slice((*byte)(unsafe.Pointer(text)), int(n))
	return C.int(r.Draw(int32(x), int32(y), uint32(color), int32(font), formatted))
}

//export erCopy
func erCopy(ctx unsafe.Pointer, src *C.char, n C.int, size C.int64_t) unsafe.Pointer {
	r := redirector()
	if r == nil {
		return C.er_call_copy(ctx, (*C.uint8_t)(unsafe.Pointer(src)), size)
	}

	// n excludes the terminator, which stays reachable through the slice capacity
	text := unsafe.Slice((*byte)(unsafe.Pointer(src)), int(n)+1)[:n]
	return r.Copy(ctx, text, int64(size))
}

//export erMeasure
func erMeasure(text *C.char, n C.int) C.int64_t {
	r := redirector()
	if r == nil {
		return C.er_call_measure(text)
	}

	formatted := unsafe.Slice((*byte)(unsafe.Pointer(text)), int(n))
	return C.int64_t(r.MeasureWidth(formatted))
}

func main() {}

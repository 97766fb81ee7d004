// Package redirect implements the three interception routines that swap
// original game text for translated text before it reaches the host's
// draw, copy and width functions.
package redirect

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"eternalredirect/sjis"
	"eternalredirect/translation"
	"eternalredirect/width_memory"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// DefaultFormatCapacity is the size of the buffer formatted strings are
// rendered into, terminator included.
const DefaultFormatCapacity = 4096

// DrawFunc draws text at (x, y). text is native encoded and already formatted.
type DrawFunc func(x, y int32, color uint32, font int32, text []byte) int32

// CopyFunc copies src into the host buffer described by ctx. src is always
// followed by a NUL byte in memory, so &src[0] is a valid C string.
type CopyFunc func(ctx unsafe.Pointer, src []byte, size int64) unsafe.Pointer

// MeasureFunc returns the rendered width of text in pixels
type MeasureFunc func(text []byte) int64

// Originals are the host implementations. A nil field means the function
// could not be resolved and calls for it fail soft.
type Originals struct {
	Draw    DrawFunc
	Copy    CopyFunc
	Measure MeasureFunc
}

// WidthTracker is the width memory consulted across the three hooks.
// *width_memory.WidthMemory implements it.
type WidthTracker interface {
	Reset()
	Offer(text string, width uint32) bool
	TakeIfLarger(threshold uint32) (string, bool)
	Current() width_memory.Entry
}

// Stats counts lookups per hook
type Stats struct {
	DrawHits, DrawMisses       uint64
	CopyHits, CopyMisses       uint64
	MeasureHits, MeasureMisses uint64
	WidthOverrides             uint64
}

type counters struct {
	drawHits, drawMisses       atomic.Uint64
	copyHits, copyMisses       atomic.Uint64
	measureHits, measureMisses atomic.Uint64
	widthOverrides             atomic.Uint64
}

// Redirector substitutes translated text in the three hooked calls
type Redirector struct {
	store     *translation.Store
	widths    WidthTracker
	originals Originals

	capacity int
	debug    bool
	log      *logger.Logger

	buffers sync.Pool
	stats   counters

	// translations already logged as having no Shift-JIS form
	fallbacks sync.Map
}

// Option configures a Redirector
type Option func(*Redirector)

// WithFormatCapacity sets the formatted string buffer size, terminator included
func WithFormatCapacity(capacity int) Option {
	return func(r *Redirector) {
		if capacity > 1 {
			r.capacity = capacity
		}
	}
}

// WithWidthMemory shares an existing tracker instead of creating one
func WithWidthMemory(w WidthTracker) Option {
	return func(r *Redirector) {
		if w != nil {
			r.widths = w
		}
	}
}

// WithDebug enables per-call trace logging
func WithDebug(debug bool) Option {
	return func(r *Redirector) {
		r.debug = debug
	}
}

// New creates a Redirector over store calling through to originals
func New(store *translation.Store, originals Originals, options ...Option) *Redirector {
	r := &Redirector{
		store:     store,
		widths:    width_memory.New(),
		originals: originals,
		capacity:  DefaultFormatCapacity,
		log:       logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "redirect")),
	}

	for _, opt := range options {
		opt(r)
	}

	r.buffers.New = func() any {
		buf := make([]byte, 0, 256)
		return &buf
	}

	return r
}

// Widths returns the tracker shared by the three hooks
func (r *Redirector) Widths() WidthTracker {
	return r.widths
}

// Stats returns a snapshot of the lookup counters
func (r *Redirector) Stats() Stats {
	return Stats{
		DrawHits:       r.stats.drawHits.Load(),
		DrawMisses:     r.stats.drawMisses.Load(),
		CopyHits:       r.stats.copyHits.Load(),
		CopyMisses:     r.stats.copyMisses.Load(),
		MeasureHits:    r.stats.measureHits.Load(),
		MeasureMisses:  r.stats.measureMisses.Load(),
		WidthOverrides: r.stats.widthOverrides.Load(),
	}
}

// lookup converts native text and looks it up in the store
func (r *Redirector) lookup(native []byte) (string, translation.Entry, bool) {
	if r.store.Len() == 0 {
		return "", translation.Entry{}, false
	}

	key, err := sjis.ToUTF8(native)
	if err != nil {
		return "", translation.Entry{}, false
	}

	entry, ok := r.store.Lookup(key)
	return key, entry, ok
}

// native encodes translated text for the host. Text that Shift-JIS cannot
// represent is forwarded as its UTF-8 bytes.
func (r *Redirector) native(text string) []byte {
	out, err := sjis.FromUTF8(text)
	if err == nil {
		return out
	}

	if _, seen := r.fallbacks.LoadOrStore(text, struct{}{}); !seen {
		r.log.Debugln("Forwarding UTF-8 for", text, "-", err)
	}
	return []byte(text)
}

// bounded clamps formatted text to the buffer capacity
func (r *Redirector) bounded(formatted []byte) []byte {
	return sjis.Truncate(formatted, r.capacity-1)
}

// Draw handles one formatted draw request. It opens a new width epoch
// before anything else.
func (r *Redirector) Draw(x, y int32, color uint32, font int32, formatted []byte) int32 {
	r.widths.Reset()

	if r.originals.Draw == nil {
		return -1
	}

	text := r.bounded(formatted)

	key, entry, ok := r.lookup(text)
	if !ok {
		r.stats.drawMisses.Add(1)
		return r.originals.Draw(x, y, color, font, text)
	}

	r.stats.drawHits.Add(1)
	if r.debug {
		r.log.Debugln("Draw:", key, "->", entry.Text)
	}

	return r.originals.Draw(x, y, color, font, r.native(entry.Text))
}

// Copy replaces the copied string and records the widest translated line
func (r *Redirector) Copy(ctx unsafe.Pointer, src []byte, size int64) unsafe.Pointer {
	if r.originals.Copy == nil {
		return nil
	}

	key, entry, ok := r.lookup(src)
	if !ok {
		r.stats.copyMisses.Add(1)
		return r.originals.Copy(ctx, src, size)
	}

	r.stats.copyHits.Add(1)

	for i, line := range entry.Lines() {
		if i >= len(entry.PixelLengths) {
			break
		}
		r.widths.Offer(line, entry.PixelLengths[i])
	}

	if r.debug {
		r.log.Debugln("Copy:", key, "->", entry.Text, "widest:", r.widths.Current().PixelLength)
	}

	bp := r.buffers.Get().(*[]byte)
	defer func() {
		*bp = (*bp)[:0]
		r.buffers.Put(bp)
	}()

	buf := append((*bp)[:0], r.native(entry.Text)...)
	buf = append(buf, 0)
	*bp = buf

	return r.originals.Copy(ctx, buf[:len(buf)-1], size)
}

// MeasureWidth measures the translated text, or the widest copied line
// when that is wider than the entry's first width hint.
func (r *Redirector) MeasureWidth(formatted []byte) int64 {
	if r.originals.Measure == nil {
		return -1
	}

	text := r.bounded(formatted)

	key, entry, ok := r.lookup(text)
	if !ok {
		r.stats.measureMisses.Add(1)
		return r.originals.Measure(text)
	}

	r.stats.measureHits.Add(1)

	// only the first line's hint is consulted
	chosen := entry.Text
	if line, taken := r.widths.TakeIfLarger(entry.FirstPixelLength()); taken {
		r.stats.widthOverrides.Add(1)
		chosen = line
	}
	r.widths.Reset()

	if r.debug {
		r.log.Debugln("MeasureWidth:", key, "->", chosen)
	}

	return r.originals.Measure(r.native(chosen))
}

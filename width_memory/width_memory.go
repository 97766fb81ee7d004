// Package width_memory remembers the widest translated line copied since
// the last draw request, so the width hook can measure that line instead
// of a stale per-key estimate.
package width_memory

import "sync"

// Entry is one line of substituted text and its rendered width in pixels
type Entry struct {
	Text        string
	PixelLength uint32
}

// Clear resets the entry to the empty state
func (e *Entry) Clear() {
	e.Text = ""
	e.PixelLength = 0
}

// IsEmpty reports whether the entry holds no candidate
func (e Entry) IsEmpty() bool {
	return e.Text == "" && e.PixelLength == 0
}

// Less reports whether the entry is narrower than width
func (e Entry) Less(width uint32) bool {
	return e.PixelLength < width
}

// Greater reports whether the entry is wider than width
func (e Entry) Greater(width uint32) bool {
	return e.PixelLength > width
}

// WidthMemory holds a single candidate: the widest line offered since the
// last Reset. Hooks for one request run in sequence (draw, copy, measure),
// and the cell is only meaningful within that sequence.
type WidthMemory struct {
	mu      sync.Mutex
	current Entry
}

// New returns an empty WidthMemory
func New() *WidthMemory {
	return &WidthMemory{}
}

// Reset starts a new request epoch
func (w *WidthMemory) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.current.Clear()
}

// Offer replaces the candidate only when width is strictly greater than
// the stored one. Ties keep the first line seen. Returns true on replace.
func (w *WidthMemory) Offer(text string, width uint32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.current.Less(width) {
		return false
	}
	w.current = Entry{Text: text, PixelLength: width}
	return true
}

// TakeIfLarger returns the candidate text and clears it when its width is
// strictly greater than threshold. Otherwise the candidate is left as is.
func (w *WidthMemory) TakeIfLarger(threshold uint32) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.current.Greater(threshold) {
		return "", false
	}
	text := w.current.Text
	w.current.Clear()
	return text, true
}

// Current returns a copy of the stored candidate
func (w *WidthMemory) Current() Entry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

package redirect

import (
	"bytes"
	"strings"
	"testing"
	"unsafe"

	"eternalredirect/sjis"
	"eternalredirect/translation"
	"eternalredirect/width_memory"
)

type drawCall struct {
	x, y  int32
	color uint32
	font  int32
	text  []byte
}

type copyCall struct {
	ctx        unsafe.Pointer
	text       []byte
	terminated bool
	size       int64
}

// host records what reached the original functions
type host struct {
	draws    []drawCall
	copies   []copyCall
	measures [][]byte
}

func (h *host) originals() Originals {
	return Originals{
		Draw: func(x, y int32, color uint32, font int32, text []byte) int32 {
			h.draws = append(h.draws, drawCall{x, y, color, font, bytes.Clone(text)})
			return int32(len(text))
		},
		Copy: func(ctx unsafe.Pointer, src []byte, size int64) unsafe.Pointer {
			terminated := cap(src) > len(src) && src[:len(src)+1][len(src)] == 0
			h.copies = append(h.copies, copyCall{ctx, bytes.Clone(src), terminated, size})
			return ctx
		},
		Measure: func(text []byte) int64 {
			h.measures = append(h.measures, bytes.Clone(text))
			return int64(len(text)) * 8
		},
	}
}

// recorder wraps WidthMemory and keeps every offer in order
type recorder struct {
	*width_memory.WidthMemory
	offers []width_memory.Entry
	resets int
}

func (r *recorder) Offer(text string, width uint32) bool {
	r.offers = append(r.offers, width_memory.Entry{Text: text, PixelLength: width})
	return r.WidthMemory.Offer(text, width)
}

func (r *recorder) Reset() {
	r.resets++
	r.WidthMemory.Reset()
}

func mustStore(t *testing.T, doc string) *translation.Store {
	t.Helper()
	s, err := translation.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return s
}

func native(t *testing.T, s string) []byte {
	t.Helper()
	b, err := sjis.FromUTF8(s)
	if err != nil {
		t.Fatalf("FromUTF8(%q) failed: %v", s, err)
	}
	return b
}

const table = `{
	"Hello": { "text": "Bonjour", "pixel_lengths": [7] },
	"二行の文": { "text": "line1\nline2", "pixel_lengths": [10, 20] },
	"三行": { "text": "a\nbb\nccc", "pixel_lengths": [5] },
	"広い": { "text": "short", "pixel_lengths": [30] }
}`

func TestPassthroughFidelity(t *testing.T) {
	h := &host{}
	r := New(mustStore(t, table), h.originals())

	in := native(t, "未翻訳のテキスト %d")
	ctx := unsafe.Pointer(&h)

	if got := r.Draw(10, 20, 0xFFFFFF, 3, in); got != int32(len(in)) {
		t.Errorf("Draw returned %d, want %d", got, len(in))
	}
	if len(h.draws) != 1 || !bytes.Equal(h.draws[0].text, in) {
		t.Fatalf("Draw forwarded %q, want %q", h.draws[0].text, in)
	}
	if d := h.draws[0]; d.x != 10 || d.y != 20 || d.color != 0xFFFFFF || d.font != 3 {
		t.Errorf("Draw arguments changed: %+v", d)
	}

	src := sjis.CString(in)[:len(in)]
	if got := r.Copy(ctx, src, 42); got != ctx {
		t.Errorf("Copy returned %p, want %p", got, ctx)
	}
	if len(h.copies) != 1 || !bytes.Equal(h.copies[0].text, in) || h.copies[0].size != 42 {
		t.Errorf("Copy forwarded %+v", h.copies)
	}
	if !h.copies[0].terminated {
		t.Error("passthrough copy must keep the source terminator")
	}

	if got := r.MeasureWidth(in); got != int64(len(in))*8 {
		t.Errorf("MeasureWidth returned %d", got)
	}
	if len(h.measures) != 1 || !bytes.Equal(h.measures[0], in) {
		t.Errorf("MeasureWidth forwarded %q", h.measures)
	}

	s := r.Stats()
	if s.DrawMisses != 1 || s.CopyMisses != 1 || s.MeasureMisses != 1 || s.DrawHits+s.CopyHits+s.MeasureHits != 0 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestEmptyStoreIsTransparent(t *testing.T) {
	h := &host{}
	r := New(translation.Empty(), h.originals())

	r.Draw(0, 0, 0, 0, []byte("Hello"))
	r.MeasureWidth([]byte("Hello"))

	if string(h.draws[0].text) != "Hello" || string(h.measures[0]) != "Hello" {
		t.Errorf("empty store must not substitute: %q %q", h.draws[0].text, h.measures[0])
	}
}

func TestEndToEndHello(t *testing.T) {
	h := &host{}
	w := &recorder{WidthMemory: width_memory.New()}
	r := New(mustStore(t, table), h.originals(), WithWidthMemory(w))

	w.WidthMemory.Offer("stale", 500)

	r.Draw(1, 2, 3, 4, []byte("Hello"))
	if w.resets != 1 {
		t.Errorf("Draw should reset width memory once, got %d", w.resets)
	}
	if !w.Current().IsEmpty() {
		t.Errorf("width memory should be empty after Draw, got %+v", w.Current())
	}
	if string(h.draws[0].text) != "Bonjour" {
		t.Errorf("Draw forwarded %q, want Bonjour", h.draws[0].text)
	}

	got := r.MeasureWidth([]byte("Hello"))
	if string(h.measures[0]) != "Bonjour" {
		t.Errorf("MeasureWidth forwarded %q, want Bonjour", h.measures[0])
	}
	if got != int64(len("Bonjour"))*8 {
		t.Errorf("MeasureWidth returned %d", got)
	}
}

func TestTextWithoutShiftJISFormKeepsUTF8(t *testing.T) {
	h := &host{}
	r := New(mustStore(t, `{
		"Hello": { "text": "Café déjà vu", "pixel_lengths": [90] },
		"挨拶": { "text": "こんにちは", "pixel_lengths": [50] }
	}`), h.originals())

	want := []byte("Café déjà vu")
	r.Draw(0, 0, 0, 0, []byte("Hello"))
	r.Copy(nil, []byte("Hello"), 0)
	r.MeasureWidth([]byte("Hello"))
	r.Draw(0, 0, 0, 0, []byte("Hello"))

	for i, d := range h.draws {
		if !bytes.Equal(d.text, want) {
			t.Errorf("draw %d forwarded %q, want %q", i, d.text, want)
		}
	}
	if !bytes.Equal(h.copies[0].text, want) || !h.copies[0].terminated {
		t.Errorf("Copy forwarded %+v", h.copies[0])
	}
	if !bytes.Equal(h.measures[0], want) {
		t.Errorf("MeasureWidth forwarded %q", h.measures[0])
	}

	logged := 0
	r.fallbacks.Range(func(_, _ any) bool {
		logged++
		return true
	})
	if logged != 1 {
		t.Errorf("fallback recorded %d times, want once per text", logged)
	}

	// text Shift-JIS can hold is still re-encoded
	r.Draw(0, 0, 0, 0, native(t, "挨拶"))
	if got := h.draws[len(h.draws)-1].text; !bytes.Equal(got, native(t, "こんにちは")) {
		t.Errorf("Draw forwarded %x, want Shift-JIS", got)
	}
}

func TestCopyOffersEveryLineInOrder(t *testing.T) {
	h := &host{}
	w := &recorder{WidthMemory: width_memory.New()}
	r := New(mustStore(t, table), h.originals(), WithWidthMemory(w))

	r.Draw(0, 0, 0, 0, native(t, "二行の文"))
	r.Copy(nil, native(t, "二行の文"), 0)

	want := []width_memory.Entry{{Text: "line1", PixelLength: 10}, {Text: "line2", PixelLength: 20}}
	if len(w.offers) != len(want) {
		t.Fatalf("offers = %+v, want %+v", w.offers, want)
	}
	for i := range want {
		if w.offers[i] != want[i] {
			t.Errorf("offer %d = %+v, want %+v", i, w.offers[i], want[i])
		}
	}

	if got := w.Current(); got.Text != "line2" || got.PixelLength != 20 {
		t.Errorf("Current() = %+v", got)
	}

	if len(h.copies) != 1 {
		t.Fatalf("expected one copy, got %d", len(h.copies))
	}
	if string(h.copies[0].text) != "line1\nline2" {
		t.Errorf("Copy forwarded %q", h.copies[0].text)
	}
	if !h.copies[0].terminated {
		t.Error("translated copy buffer must be NUL terminated")
	}
}

func TestCopyOnlyOffersLinesWithWidths(t *testing.T) {
	h := &host{}
	w := &recorder{WidthMemory: width_memory.New()}
	r := New(mustStore(t, table), h.originals(), WithWidthMemory(w))

	r.Copy(nil, native(t, "三行"), 0)

	if len(w.offers) != 1 || w.offers[0].Text != "a" || w.offers[0].PixelLength != 5 {
		t.Errorf("offers = %+v, want only the first line", w.offers)
	}
}

func TestMeasureUsesWiderCopiedLine(t *testing.T) {
	h := &host{}
	r := New(mustStore(t, table), h.originals())

	r.Draw(0, 0, 0, 0, native(t, "二行の文"))
	r.Copy(nil, native(t, "二行の文"), 0)

	r.MeasureWidth(native(t, "二行の文"))
	if string(h.measures[0]) != "line2" {
		t.Errorf("MeasureWidth forwarded %q, want the widest copied line", h.measures[0])
	}
	if !r.Widths().Current().IsEmpty() {
		t.Error("width memory must be consumed by MeasureWidth")
	}

	// consumed: the second measurement falls back to the table text
	r.MeasureWidth(native(t, "二行の文"))
	if string(h.measures[1]) != "line1\nline2" {
		t.Errorf("second MeasureWidth forwarded %q", h.measures[1])
	}

	if r.Stats().WidthOverrides != 1 {
		t.Errorf("WidthOverrides = %d, want 1", r.Stats().WidthOverrides)
	}
}

func TestMeasureKeepsTableTextWhenCandidateNarrower(t *testing.T) {
	h := &host{}
	r := New(mustStore(t, table), h.originals())

	r.Widths().Offer("tiny", 3)
	r.MeasureWidth(native(t, "広い"))

	if string(h.measures[0]) != "short" {
		t.Errorf("MeasureWidth forwarded %q, want table text", h.measures[0])
	}
	if !r.Widths().Current().IsEmpty() {
		t.Error("candidate must be cleared even when not used")
	}
}

func TestMeasureMissLeavesCandidate(t *testing.T) {
	h := &host{}
	r := New(mustStore(t, table), h.originals())

	r.Widths().Offer("kept", 50)
	r.MeasureWidth([]byte("not in table"))

	if got := r.Widths().Current(); got.Text != "kept" {
		t.Errorf("miss should not touch width memory, got %+v", got)
	}
}

func TestDrawTruncatesToCapacity(t *testing.T) {
	h := &host{}
	r := New(translation.Empty(), h.originals(), WithFormatCapacity(8))

	r.Draw(0, 0, 0, 0, []byte(strings.Repeat("x", 20)))
	if len(h.draws[0].text) != 7 {
		t.Errorf("expected 7 bytes, got %d", len(h.draws[0].text))
	}

	wide := native(t, "ああああ")
	r.MeasureWidth(wide)
	if !bytes.Equal(h.measures[0], wide[:6]) {
		t.Errorf("truncation split a character: %x", h.measures[0])
	}
}

func TestUnresolvedOriginalsFailSoft(t *testing.T) {
	r := New(mustStore(t, table), Originals{})

	if got := r.Draw(0, 0, 0, 0, []byte("Hello")); got != -1 {
		t.Errorf("Draw = %d, want -1", got)
	}
	if got := r.Copy(nil, []byte("Hello"), 0); got != nil {
		t.Errorf("Copy = %p, want nil", got)
	}
	if got := r.MeasureWidth([]byte("Hello")); got != -1 {
		t.Errorf("MeasureWidth = %d, want -1", got)
	}
}

func TestCopyBufferReuse(t *testing.T) {
	h := &host{}
	r := New(mustStore(t, table), h.originals())

	for i := 0; i < 3; i++ {
		r.Copy(nil, []byte("Hello"), 0)
		r.Copy(nil, native(t, "二行の文"), 0)
	}

	for i, c := range h.copies {
		want := "Bonjour"
		if i%2 == 1 {
			want = "line1\nline2"
		}
		if string(c.text) != want || !c.terminated {
			t.Errorf("copy %d = %q (terminated %v)", i, c.text, c.terminated)
		}
	}
}

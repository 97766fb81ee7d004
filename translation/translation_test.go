package translation

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

const sample = `{
	"こんにちは": { "text": "Hello", "pixel_lengths": [40] },
	"二行": { "text": "line1\nline2", "pixel_lengths": [10, 20] },
	"幅なし": { "text": "no widths" },
	"壊れた": { "pixel_lengths": [5] },
	"変な幅": { "text": "odd", "pixel_lengths": [-1, 1.5, "7", 12] },
	"三行": { "text": "a\nb\nc", "pixel_lengths": [10, -1, 30] }
}`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(sample))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
	if s.Skipped() != 3 {
		t.Errorf("Skipped() = %d, want 3", s.Skipped())
	}

	e, ok := s.Lookup("こんにちは")
	if !ok || e.Text != "Hello" || !reflect.DeepEqual(e.PixelLengths, []uint32{40}) {
		t.Errorf("unexpected entry %+v (%v)", e, ok)
	}

	e, ok = s.Lookup("二行")
	if !ok || !reflect.DeepEqual(e.Lines(), []string{"line1", "line2"}) {
		t.Errorf("unexpected lines %v", e.Lines())
	}
	if !reflect.DeepEqual(e.PixelLengths, []uint32{10, 20}) {
		t.Errorf("unexpected widths %v", e.PixelLengths)
	}

	e, ok = s.Lookup("幅なし")
	if !ok || e.FirstPixelLength() != 0 || len(e.PixelLengths) != 0 {
		t.Errorf("entry without widths: %+v", e)
	}

	// a bad width would shift every later width onto the wrong line
	for _, key := range []string{"変な幅", "三行"} {
		if e, ok := s.Lookup(key); ok {
			t.Errorf("entry %q with an invalid width was kept: %+v", key, e)
		}
	}

	if _, ok := s.Lookup("missing"); ok {
		t.Error("lookup of a missing key should miss")
	}

	keys := s.Keys()
	sort.Strings(keys)
	if len(keys) != 3 {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestParseMalformed(t *testing.T) {
	for _, doc := range []string{`{"a": `, `[1, 2]`, `"text"`, ``} {
		if _, err := Parse([]byte(doc)); !errors.Is(err, ErrMalformed) {
			t.Errorf("Parse(%q) expected ErrMalformed, got %v", doc, err)
		}
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tr.json")
	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d", s.Len())
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestEmptyAndNilStore(t *testing.T) {
	if _, ok := Empty().Lookup("x"); ok {
		t.Error("empty store should miss")
	}

	var s *Store
	if _, ok := s.Lookup("x"); ok || s.Len() != 0 {
		t.Error("nil store should behave as empty")
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{""}},
		{"one", []string{"one"}},
		{"a\nb", []string{"a", "b"}},
		{"a\n", []string{"a", ""}},
		{"\n\n", []string{"", "", ""}},
	}

	for _, tt := range tests {
		if got := SplitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

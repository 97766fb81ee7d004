package hexdump

import (
	"strings"
	"testing"
)

func plain() Options {
	o := DefaultOptions()
	o.Colorize = false
	o.OffsetWidth = 4
	return o
}

func TestDumpLine(t *testing.T) {
	got := Dump([]byte("AB\x00"), plain())
	want := "0000  41 42 00" + strings.Repeat(" ", 3*5+1+3*8-1+1) + " |AB.|\n"
	if got != want {
		t.Fatalf("Dump =\n%q\nwant\n%q", got, want)
	}
}

func TestDumpLines(t *testing.T) {
	data := make([]byte, 40)
	out := Dump(data, plain())
	if n := strings.Count(out, "\n"); n != 3 {
		t.Fatalf("lines = %d, want 3", n)
	}
	if !strings.HasPrefix(strings.Split(out, "\n")[2], "0020") {
		t.Fatalf("third line offset wrong: %q", out)
	}
}

func TestMaxLines(t *testing.T) {
	o := plain()
	o.MaxLines = 1
	out := Dump(make([]byte, 40), o)
	if !strings.Contains(out, "... 24 more bytes") {
		t.Fatalf("missing truncation marker: %q", out)
	}
}

func TestHighlightWithoutColor(t *testing.T) {
	o := plain()
	o.ShowASCII = false
	o.HighlightStart = 1
	o.HighlightLen = 2
	got := Dump([]byte{0xab, 0xcd, 0xef, 0x01}, o)
	if got != "0000  ab CD EF 01\n" {
		t.Fatalf("Dump = %q", got)
	}
}

func TestDumpMatch(t *testing.T) {
	data := make([]byte, 64)
	copy(data[40:], []byte{0x48, 0x89})
	out := DumpMatch(data, 0x1000, 40, 2, 8, false)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2: %q", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "000000001020") {
		t.Fatalf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[0], "48 89") {
		t.Fatalf("match not shown: %q", lines[0])
	}
}

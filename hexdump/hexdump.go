// Package hexdump renders memory around a signature match.
package hexdump

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"eternalredirect/coloransi"
)

// Options controls the dump layout
type Options struct {
	// BytesPerLine defines the number of bytes to display per line
	BytesPerLine int

	// StartOffset is the address printed for data[0]
	StartOffset uint64

	// OffsetWidth is the width of the offset column in hex digits
	OffsetWidth int

	ShowASCII bool

	// Colorize emits ANSI colors; off for files and tests
	Colorize bool

	OffsetColor    coloransi.ColorCode
	HexColor       coloransi.ColorCode
	ZeroColor      coloransi.ColorCode
	HighlightColor coloransi.ColorCode

	// HighlightStart and HighlightLen select a byte range of data to
	// highlight, typically the bytes a signature matched.
	HighlightStart int
	HighlightLen   int

	// MaxLines is the maximum number of lines to show (0 for no limit)
	MaxLines int
}

// DefaultOptions returns the default hexdump options
func DefaultOptions() Options {
	return Options{
		BytesPerLine:   16,
		OffsetWidth:    12,
		ShowASCII:      true,
		Colorize:       true,
		OffsetColor:    coloransi.Cyan,
		HexColor:       coloransi.Green,
		ZeroColor:      coloransi.BrightBlack,
		HighlightColor: coloransi.ColorOrange,
	}
}

// Dump creates a hex dump of the given data with specified options
func Dump(data []byte, options Options) string {
	var buffer bytes.Buffer
	DumpToWriter(&buffer, data, options)
	return buffer.String()
}

// DumpToWriter writes a hex dump of the given data to the specified writer
func DumpToWriter(writer io.Writer, data []byte, options Options) {
	if options.BytesPerLine <= 0 {
		options.BytesPerLine = 16
	}
	if options.OffsetWidth <= 0 {
		options.OffsetWidth = 8
	}

	lines := 0
	for offset := 0; offset < len(data); offset += options.BytesPerLine {
		if options.MaxLines > 0 && lines >= options.MaxLines {
			fmt.Fprintf(writer, "... %d more bytes\n", len(data)-offset)
			break
		}

		end := min(offset+options.BytesPerLine, len(data))
		formatLine(writer, data[offset:end], offset, options)
		lines++
	}
}

func (o Options) highlighted(i int) bool {
	return o.HighlightLen > 0 && i >= o.HighlightStart && i < o.HighlightStart+o.HighlightLen
}

func (o Options) paint(color coloransi.ColorCode, s string) string {
	if !o.Colorize {
		return s
	}
	return coloransi.Foreground(color, s)
}

func formatLine(writer io.Writer, line []byte, offset int, options Options) {
	var sb strings.Builder

	addr := fmt.Sprintf("%0*x", options.OffsetWidth, options.StartOffset+uint64(offset))
	sb.WriteString(options.paint(options.OffsetColor, addr))
	sb.WriteString("  ")

	for i := 0; i < options.BytesPerLine; i++ {
		if i == options.BytesPerLine/2 {
			sb.WriteByte(' ')
		}
		if i >= len(line) {
			sb.WriteString("   ")
			continue
		}

		b := line[i]
		cell := fmt.Sprintf("%02x", b)
		switch {
		case options.highlighted(offset + i):
			if options.Colorize {
				cell = coloransi.Color(coloransi.Black, options.HighlightColor, cell)
			} else {
				cell = strings.ToUpper(cell)
			}
		case b == 0:
			cell = options.paint(options.ZeroColor, cell)
		default:
			cell = options.paint(options.HexColor, cell)
		}
		sb.WriteString(cell)
		sb.WriteByte(' ')
	}

	if options.ShowASCII {
		sb.WriteString(" |")
		for _, b := range line {
			if b >= 0x20 && b < 0x7f {
				sb.WriteByte(b)
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('|')
	}

	fmt.Fprintln(writer, strings.TrimRight(sb.String(), " "))
}

// DumpMatch dumps context bytes either side of a match of length n at
// index in data, where data[0] lives at base.
func DumpMatch(data []byte, base uint64, index, n, context int, colorize bool) string {
	start := max(index-context, 0)
	start -= start % 16
	end := min(index+n+context, len(data))

	options := DefaultOptions()
	options.Colorize = colorize
	options.StartOffset = base + uint64(start)
	options.HighlightStart = index - start
	options.HighlightLen = n

	return Dump(data[start:end], options)
}

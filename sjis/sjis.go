// Package sjis converts between the host's Shift-JIS (code page 932)
// strings and the UTF-8 text used for translation lookups.
package sjis

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// ToUTF8 decodes native Shift-JIS bytes. Bytes that are not valid
// Shift-JIS decode to U+FFFD, so the result never fails on odd input.
func ToUTF8(native []byte) (string, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewDecoder(), native)
	if err != nil {
		return "", fmt.Errorf("shift-jis decode: %w", err)
	}
	return string(out), nil
}

// FromUTF8 encodes text to Shift-JIS. Runes with no Shift-JIS form are an error.
func FromUTF8(text string) ([]byte, error) {
	out, _, err := transform.Bytes(japanese.ShiftJIS.NewEncoder(), []byte(text))
	if err != nil {
		return nil, fmt.Errorf("shift-jis encode: %w", err)
	}
	return out, nil
}

// isLeadByte reports whether b starts a two byte Shift-JIS character
func isLeadByte(b byte) bool {
	return (b >= 0x81 && b <= 0x9F) || (b >= 0xE0 && b <= 0xFC)
}

// Truncate limits native to at most max bytes without splitting a two
// byte character. Anything after the first NUL is dropped as well.
func Truncate(native []byte, max int) []byte {
	if i := bytes.IndexByte(native, 0); i >= 0 {
		native = native[:i]
	}

	if max <= 0 {
		return native[:0]
	}
	if len(native) <= max {
		return native
	}

	end := 0
	for end < max {
		step := 1
		if isLeadByte(native[end]) {
			step = 2
		}
		if end+step > max {
			break
		}
		end += step
	}

	return native[:end]
}

// CString returns native followed by a NUL terminator in a new slice
func CString(native []byte) []byte {
	buf := make([]byte, len(native)+1)
	copy(buf, native)
	return buf
}

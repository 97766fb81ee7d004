// Package translation holds the read-only table of replacement strings,
// keyed by the original game text converted to UTF-8.
package translation

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

// ErrMalformed is returned when the document is not a JSON object
var ErrMalformed = errors.New("malformed translation document")

// Entry is the replacement for one original string
type Entry struct {
	Text         string   // translated text, lines separated by '\n'
	PixelLengths []uint32 // expected rendered width of each line, in order
}

// Lines splits the translated text on line feeds
func (e Entry) Lines() []string {
	return SplitLines(e.Text)
}

// FirstPixelLength returns the width hint of the first line, 0 if there is none
func (e Entry) FirstPixelLength() uint32 {
	if len(e.PixelLengths) == 0 {
		return 0
	}
	return e.PixelLengths[0]
}

// Store maps original text to its replacement. It is never modified after
// it is built, so concurrent lookups are safe.
type Store struct {
	entries map[string]Entry
	skipped int
}

// Empty returns a store with no entries. Every lookup misses.
func Empty() *Store {
	return &Store{entries: map[string]Entry{}}
}

// Load reads and parses the document at path
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read translations: %w", err)
	}
	return Parse(data)
}

// Parse builds a store from a JSON object of the form
//
//	{ "original": { "text": "translated", "pixel_lengths": [120, 96] } }
//
// Entries without a string "text" are skipped. So are entries with a width
// that is not a non-negative integer, since widths pair with lines by index.
func Parse(data []byte) (*Store, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrMalformed
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("top level is %s: %w", doc.Type, ErrMalformed)
	}

	s := Empty()
	doc.ForEach(func(key, value gjson.Result) bool {
		text := value.Get("text")
		if text.Type != gjson.String {
			s.skipped++
			return true
		}

		entry := Entry{Text: text.Str}
		valid := true
		value.Get("pixel_lengths").ForEach(func(_, width gjson.Result) bool {
			if width.Type != gjson.Number || width.Num < 0 || width.Num != float64(uint32(width.Num)) {
				valid = false
				return false
			}
			entry.PixelLengths = append(entry.PixelLengths, uint32(width.Num))
			return true
		})
		if !valid {
			s.skipped++
			return true
		}

		s.entries[key.String()] = entry
		return true
	})

	return s, nil
}

// Lookup returns the replacement for the UTF-8 original text
func (s *Store) Lookup(original string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s.entries[original]
	return e, ok
}

// Len returns the number of entries
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Skipped returns how many entries were rejected while parsing
func (s *Store) Skipped() int {
	if s == nil {
		return 0
	}
	return s.skipped
}

// Keys returns all original strings in no particular order
func (s *Store) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// SplitLines splits on '\n'. An empty string yields one empty line and a
// trailing separator yields a trailing empty line.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}

package main

import (
	"fmt"
	"io"
	"sort"

	"eternalredirect/coloransi"
	"eternalredirect/hexdump"
	"eternalredirect/process"
	"eternalredirect/scanner"
	"eternalredirect/translation"
)

type signature struct {
	name string
	aob  process.AOB
}

type match struct {
	signature
	address process.ProcessMemoryAddress
	count   int
	err     error
}

// usable reports whether the hook would install on exactly this function
func (m match) usable() bool {
	return m.err == nil && m.count == 1
}

func checkSignatures(sc *scanner.Scanner, signatures []signature) []match {
	matches := make([]match, 0, len(signatures))
	for _, sig := range signatures {
		m := match{signature: sig, address: process.NotFound}

		m.count, m.err = sc.Count(sig.aob)
		if m.err == nil && m.count > 0 {
			m.address = sc.Find(sig.aob)
		}
		matches = append(matches, m)
	}
	return matches
}

type mismatch struct {
	key           string
	lines, widths int
}

// checkTranslations lists entries whose width hints do not line up with
// their lines. Extra widths are ignored at runtime and missing ones leave
// lines out of the widest-line override.
func checkTranslations(store *translation.Store) []mismatch {
	var out []mismatch
	for _, key := range store.Keys() {
		entry, _ := store.Lookup(key)
		lines := len(entry.Lines())
		if lines != len(entry.PixelLengths) {
			out = append(out, mismatch{key: key, lines: lines, widths: len(entry.PixelLengths)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

func writeMatches(w io.Writer, img process.Image, bound process.ProcessMemoryAddress, matches []match, context int, colorize bool) {
	for i, m := range matches {
		name := m.name
		if colorize {
			name = coloransi.Foreground(coloransi.ColorFrom(uint64(i)), m.name)
		}

		switch {
		case m.err != nil:
			fmt.Fprintf(w, "%s: %v\n", name, m.err)
			continue
		case m.count == 0:
			fmt.Fprintf(w, "%s: not found (%s)\n", name, m.aob.String())
			continue
		case m.count > 1:
			fmt.Fprintf(w, "%s: %d matches, first at %s (%s)\n", name, m.count, m.address.ToString(), m.aob.String())
		default:
			fmt.Fprintf(w, "%s: %s (%s)\n", name, m.address.ToString(), m.aob.String())
		}

		if context <= 0 {
			continue
		}

		start := m.address - process.ProcessMemoryAddress(min(uint64(context), uint64(m.address-img.Base())))
		end := min(m.address+process.ProcessMemoryAddress(m.aob.Len()+context), bound)
		data, err := img.ReadMemory(start, process.ProcessMemorySize(end-start))
		if err != nil {
			fmt.Fprintf(w, "  unable to read context: %v\n", err)
			continue
		}
		fmt.Fprint(w, hexdump.DumpMatch(data, uint64(start), int(m.address-start), m.aob.Len(), context, colorize))
	}
}

func writeMismatches(w io.Writer, mismatches []mismatch) {
	for _, m := range mismatches {
		fmt.Fprintf(w, "%q: %d lines, %d pixel lengths\n", m.key, m.lines, m.widths)
	}
}

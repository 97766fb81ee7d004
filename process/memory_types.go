package process

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// ProcessMemoryAddress represents a memory address within a process
type ProcessMemoryAddress uint64

// NotFound is returned by scans that did not match. All bits are set.
const NotFound = ^ProcessMemoryAddress(0)

func (pma ProcessMemoryAddress) ToString() string {
	if pma == NotFound {
		return "not-found"
	}
	return fmt.Sprintf("0x%X", uint64(pma))
}

// IsFound reports whether the address is a resolved location
func (pma ProcessMemoryAddress) IsFound() bool {
	return pma != NotFound
}

// ProcessMemorySize represents a size of memory region
type ProcessMemorySize uint

func (pms ProcessMemorySize) ToString() string {
	return fmt.Sprintf("%d bytes", uint(pms))
}

// AOB (Array of Bytes) represents a pattern to search for in memory
type AOB struct {
	Pattern []byte // The byte pattern to search for
	Mask    []byte // Optional mask where 0xFF means exact match and 0x00 means wildcard
}

// IsValid checks if the AOB pattern is valid
func (aob AOB) IsValid() bool {
	if len(aob.Pattern) == 0 {
		return false
	}
	return len(aob.Mask) == 0 || len(aob.Pattern) == len(aob.Mask)
}

// Len returns the number of bytes the pattern spans
func (aob AOB) Len() int {
	return len(aob.Pattern)
}

// Exact creates an AOB without wildcards
func Exact(pattern ...byte) AOB {
	return AOB{Pattern: pattern}
}

// ParseAOB parses a pattern such as "48 89 5C 24 ?? 57" or "48,89,??".
func ParseAOB(text string) (AOB, error) {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' '
	})

	if len(parts) == 0 {
		return AOB{}, fmt.Errorf("empty pattern")
	}

	pattern := make([]byte, 0, len(parts))
	mask := make([]byte, 0, len(parts))
	wildcards := false

	for _, part := range parts {
		if part == "??" || part == "?" {
			pattern = append(pattern, 0)
			mask = append(mask, 0)
			wildcards = true
			continue
		}

		val, err := strconv.ParseUint(part, 16, 8)
		if err != nil {
			return AOB{}, fmt.Errorf("invalid hex byte: %s", part)
		}
		pattern = append(pattern, byte(val))
		mask = append(mask, 0xFF)
	}

	if !wildcards {
		mask = nil
	}

	return AOB{Pattern: pattern, Mask: mask}, nil
}

// String formats the pattern with ?? for wildcard bytes
func (aob AOB) String() string {
	var sb strings.Builder
	for i, b := range aob.Pattern {
		if i > 0 {
			sb.WriteString(" ")
		}
		if len(aob.Mask) > i && aob.Mask[i] == 0 {
			sb.WriteString("??")
		} else {
			sb.WriteString(strings.ToUpper(hex.EncodeToString([]byte{b})))
		}
	}
	return sb.String()
}

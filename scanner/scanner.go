// Package scanner locates functions inside a module image by byte signature.
package scanner

import (
	"errors"
	"fmt"

	"eternalredirect/process"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

var (
	// ErrPatternNotFound is returned when a signature does not occur before the scan bound.
	ErrPatternNotFound = errors.New("pattern not found")

	// ErrInvalidPattern is returned for empty patterns or masks of the wrong length.
	ErrInvalidPattern = errors.New("invalid pattern")
)

// Scanner searches the accessible prefix of a module image
type Scanner struct {
	image process.Image
	log   *logger.Logger

	bound process.ProcessMemoryAddress
	data  []byte
}

// New creates a scanner over image. The image is read lazily on the first Find.
func New(image process.Image) *Scanner {
	return &Scanner{
		image: image,
		log:   logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "scanner")),
	}
}

// Bound walks regions forward from the image base until one is neither
// readable nor executable and returns that region's start address.
func (s *Scanner) Bound() process.ProcessMemoryAddress {
	base := s.image.Base()
	end := base

	for {
		item, err := s.image.QueryRegion(end)
		if err != nil || !item.IsAccessible() {
			break
		}

		next := process.ProcessMemoryAddress(item.End())
		if next <= end {
			break
		}
		end = next
	}

	return end
}

func (s *Scanner) load() error {
	if s.data != nil {
		return nil
	}

	base := s.image.Base()
	s.bound = s.Bound()
	if s.bound <= base {
		s.data = []byte{}
		return nil
	}

	data, err := s.image.ReadMemory(base, process.ProcessMemorySize(s.bound-base))
	if err != nil {
		return fmt.Errorf("read image 0x%x-0x%x: %w", uint64(base), uint64(s.bound), err)
	}

	s.data = data
	s.log.Infoln("Scanning", len(data), "bytes from", base.ToString(), "to", s.bound.ToString())
	return nil
}

// Resolve returns the address of the first match of aob in the image
func (s *Scanner) Resolve(aob process.AOB) (process.ProcessMemoryAddress, error) {
	if !aob.IsValid() {
		return process.NotFound, ErrInvalidPattern
	}

	if err := s.load(); err != nil {
		return process.NotFound, err
	}

	offset, ok := FindPattern(s.data, aob)
	if !ok {
		return process.NotFound, fmt.Errorf("%s: %w", aob.String(), ErrPatternNotFound)
	}

	return s.image.Base() + process.ProcessMemoryAddress(offset), nil
}

// Find is Resolve without the error: process.NotFound signals a miss.
func (s *Scanner) Find(aob process.AOB) process.ProcessMemoryAddress {
	addr, err := s.Resolve(aob)
	if err != nil {
		s.log.Debugln("Find failed:", err)
		return process.NotFound
	}
	return addr
}

// Count returns how many times aob occurs in the image. Signatures are only
// safe to use when this is exactly one.
func (s *Scanner) Count(aob process.AOB) (int, error) {
	if !aob.IsValid() {
		return 0, ErrInvalidPattern
	}

	if err := s.load(); err != nil {
		return 0, err
	}

	count := 0
	data := s.data
	for {
		offset, ok := FindPattern(data, aob)
		if !ok {
			return count, nil
		}
		count++
		data = data[offset+1:]
	}
}

// FindPattern returns the offset of the first occurrence of aob in data.
// Mask bytes of 0x00 are wildcards; a nil mask means an exact match.
func FindPattern(data []byte, aob process.AOB) (int, bool) {
	pattern := aob.Pattern
	mask := aob.Mask

	if len(pattern) == 0 || len(data) < len(pattern) {
		return 0, false
	}
	if len(mask) != 0 && len(mask) != len(pattern) {
		return 0, false
	}

	exact := len(mask) == 0

	for i := 0; i <= len(data)-len(pattern); i++ {
		matched := true

		for j := 0; j < len(pattern); j++ {
			if exact {
				if data[i+j] != pattern[j] {
					matched = false
					break
				}
				continue
			}

			if mask[j] == 0 {
				continue
			}

			if data[i+j]&mask[j] != pattern[j]&mask[j] {
				matched = false
				break
			}
		}

		if matched {
			return i, true
		}
	}

	return 0, false
}

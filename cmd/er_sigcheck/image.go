package main

import (
	"bytes"
	"fmt"
	"os"

	"eternalredirect/process"
	"eternalredirect/process_blob"

	"github.com/Binject/debug/pe"
)

const (
	pageSize = 0x1000

	scnMemExecute = 0x20000000
	scnMemRead    = 0x40000000
	scnMemWrite   = 0x80000000
)

// section is the part of a PE section header the mapper needs
type section struct {
	name            string
	virtualAddress  uint32
	virtualSize     uint32
	characteristics uint32
	data            []byte
}

func alignPage(n uint64) uint64 {
	return (n + pageSize - 1) &^ (pageSize - 1)
}

func sectionPerms(characteristics uint32) string {
	perms := []byte("---")
	if characteristics&scnMemRead != 0 {
		perms[0] = 'r'
	}
	if characteristics&scnMemWrite != 0 {
		perms[1] = 'w'
	}
	if characteristics&scnMemExecute != 0 {
		perms[2] = 'x'
	}
	return string(perms)
}

// mapImage lays headers and sections out the way the loader does: each at
// imageBase plus its virtual address, zero filled to whole pages.
func mapImage(imageBase process.ProcessMemoryAddress, headers []byte, sections []section) *process_blob.ProcessBlob {
	blob := process_blob.NewEmpty(imageBase)

	if len(headers) > 0 {
		page := make([]byte, alignPage(uint64(len(headers))))
		copy(page, headers)
		blob.Map(imageBase, page, "r--")
	}

	for _, s := range sections {
		size := uint64(s.virtualSize)
		if size == 0 {
			size = uint64(len(s.data))
		}
		if size == 0 {
			continue
		}

		mapped := make([]byte, alignPage(size))
		copy(mapped, s.data)
		blob.Map(imageBase+process.ProcessMemoryAddress(s.virtualAddress), mapped, sectionPerms(s.characteristics))
	}

	return blob
}

// loadExecutable parses a PE file from disk and maps it at its preferred base
func loadExecutable(path string) (*process_blob.ProcessBlob, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	f, err := pe.NewFile(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer f.Close()

	var (
		imageBase     uint64
		sizeOfHeaders uint32
	)
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader64:
		imageBase, sizeOfHeaders = oh.ImageBase, oh.SizeOfHeaders
	case *pe.OptionalHeader32:
		imageBase, sizeOfHeaders = uint64(oh.ImageBase), oh.SizeOfHeaders
	default:
		return nil, fmt.Errorf("%s has no optional header", path)
	}

	if int(sizeOfHeaders) > len(raw) {
		sizeOfHeaders = uint32(len(raw))
	}

	sections := make([]section, 0, len(f.Sections))
	for _, s := range f.Sections {
		data, err := s.Data()
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", s.Name, err)
		}
		sections = append(sections, section{
			name:            s.Name,
			virtualAddress:  s.VirtualAddress,
			virtualSize:     s.VirtualSize,
			characteristics: s.Characteristics,
			data:            data,
		})
	}

	return mapImage(process.ProcessMemoryAddress(imageBase), raw[:sizeOfHeaders], sections), nil
}

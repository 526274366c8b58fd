// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wasm reads the section structure of WebAssembly binary modules. It does not
// decode or validate section payloads.
package wasm

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

var ErrInvalidMagic = errors.New("wasm: magic header not detected")

const (
	Magic   uint32 = 0x6d736100
	Version uint32 = 0x1
)

// UnknownVersionError is returned for modules with a binary version other than Version.
type UnknownVersionError uint32

func (e UnknownVersionError) Error() string {
	return fmt.Sprintf("wasm: unknown binary version %d", uint32(e))
}

// Module represents the section layout of a WebAssembly module.
type Module struct {
	Version  uint32
	Size     int64
	Sections []RawSection
}

// Section returns the first section with the given ID, if any.
func (m *Module) Section(id SectionID) (RawSection, bool) {
	for _, s := range m.Sections {
		if s.ID == id {
			return s, true
		}
	}
	return RawSection{}, false
}

// Custom returns the custom section with the given name, if any.
func (m *Module) Custom(name string) (RawSection, bool) {
	for _, s := range m.Sections {
		if s.ID == SectionIDCustom && s.Name == name {
			return s, true
		}
	}
	return RawSection{}, false
}

// IsModule reports whether b begins with the WebAssembly magic number.
func IsModule(b []byte) bool {
	return len(b) >= 4 && binary.LittleEndian.Uint32(b) == Magic
}

// ReadModule reads the header and section table of a WebAssembly module.
func ReadModule(r io.Reader) (*Module, error) {
	reader := &readPos{r: bufio.NewReader(r)}

	var header [8]byte
	if _, err := io.ReadFull(reader, header[:]); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, ErrInvalidMagic
		}
		return nil, err
	}
	if !IsModule(header[:4]) {
		return nil, ErrInvalidMagic
	}

	m := &Module{Version: binary.LittleEndian.Uint32(header[4:])}
	if m.Version != Version {
		return nil, UnknownVersionError(m.Version)
	}

	if err := newSectionsReader(m).readSections(reader); err != nil {
		return nil, err
	}
	m.Size = reader.pos
	return m, nil
}

// ReadFile reads the section table of the module stored at path.
func ReadFile(path string) (*Module, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ReadModule(f)
}

// Copyright 2017 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wasm

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/willf/bitset"

	"github.com/pgavlin/wasmjs/wasm/leb128"
)

// SectionID is a 1-byte code that encodes the section code of both known and custom sections.
type SectionID uint8

const (
	SectionIDCustom    SectionID = 0
	SectionIDType      SectionID = 1
	SectionIDImport    SectionID = 2
	SectionIDFunction  SectionID = 3
	SectionIDTable     SectionID = 4
	SectionIDMemory    SectionID = 5
	SectionIDGlobal    SectionID = 6
	SectionIDExport    SectionID = 7
	SectionIDStart     SectionID = 8
	SectionIDElement   SectionID = 9
	SectionIDCode      SectionID = 10
	SectionIDData      SectionID = 11
	SectionIDDataCount SectionID = 12
)

var sectionNames = map[SectionID]string{
	SectionIDCustom:    "custom",
	SectionIDType:      "type",
	SectionIDImport:    "import",
	SectionIDFunction:  "function",
	SectionIDTable:     "table",
	SectionIDMemory:    "memory",
	SectionIDGlobal:    "global",
	SectionIDExport:    "export",
	SectionIDStart:     "start",
	SectionIDElement:   "element",
	SectionIDCode:      "code",
	SectionIDData:      "data",
	SectionIDDataCount: "datacount",
}

func (s SectionID) String() string {
	n, ok := sectionNames[s]
	if !ok {
		return "unknown"
	}
	return n
}

// order returns the position of a non-custom section in the prescribed section order. The
// data count section is encoded with ID 12 but precedes the code section.
func (s SectionID) order() uint {
	switch {
	case s == SectionIDDataCount:
		return uint(SectionIDElement) + 1
	case s >= SectionIDCode:
		return uint(s) + 1
	default:
		return uint(s)
	}
}

// RawSection is a declared section in a WASM module. Start and End are the offsets of the
// section payload within the module.
type RawSection struct {
	Start int64
	End   int64

	ID SectionID
	// Name is the name of a custom section.
	Name string
}

// Size returns the size of the section payload.
func (s RawSection) Size() int64 {
	return s.End - s.Start
}

type InvalidSectionIDError SectionID

func (e InvalidSectionIDError) Error() string {
	return fmt.Sprintf("wasm: malformed section id %d", uint8(e))
}

var ErrSectionOrder = errors.New("wasm: sections must occur at most once and in the prescribed order")

var errInvalidUTF8 = errors.New("wasm: invalid UTF-8 in custom section name")

type readPos struct {
	r   io.Reader
	pos int64
}

func (r *readPos) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.pos += int64(n)
	return n, err
}

type sectionsReader struct {
	lastSecOrder uint // position of the previous non-custom section
	seen         bitset.BitSet
	m            *Module
}

func newSectionsReader(m *Module) *sectionsReader {
	return &sectionsReader{m: m}
}

func (s *sectionsReader) readSections(r *readPos) error {
	for {
		done, err := s.readSection(r)
		switch {
		case err != nil:
			return err
		case done:
			return nil
		}
	}
}

// reads a valid section from r. The first return value is true if and only if
// the module has been completely read.
func (sr *sectionsReader) readSection(r *readPos) (bool, error) {
	var id [1]byte
	if _, err := io.ReadFull(r, id[:]); err != nil {
		if err == io.EOF {
			return true, nil
		}
		return false, err
	}

	s := RawSection{ID: SectionID(id[0])}
	if _, ok := sectionNames[s.ID]; !ok {
		return false, InvalidSectionIDError(s.ID)
	}
	if s.ID != SectionIDCustom {
		order := s.ID.order()
		if sr.seen.Test(uint(s.ID)) || order <= sr.lastSecOrder {
			return false, ErrSectionOrder
		}
		sr.seen.Set(uint(s.ID))
		sr.lastSecOrder = order
	}

	payloadLen, err := leb128.ReadVarUint32(r)
	if err != nil {
		return false, err
	}

	s.Start = r.pos
	payload := io.LimitReader(r, int64(payloadLen))

	if s.ID == SectionIDCustom {
		if s.Name, err = readName(payload); err != nil {
			return false, err
		}
	}
	if _, err := io.Copy(io.Discard, payload); err != nil {
		return false, err
	}
	s.End = r.pos
	if s.Size() != int64(payloadLen) {
		return false, io.ErrUnexpectedEOF
	}

	sr.m.Sections = append(sr.m.Sections, s)
	return false, nil
}

func readName(r io.Reader) (string, error) {
	n, err := leb128.ReadVarUint32(r)
	if err != nil {
		return "", err
	}
	buf, err := io.ReadAll(io.LimitReader(r, int64(n)))
	if err != nil {
		return "", err
	}
	if len(buf) != int(n) {
		return "", io.ErrUnexpectedEOF
	}
	if !utf8.Valid(buf) {
		return "", errInvalidUTF8
	}
	return string(buf), nil
}

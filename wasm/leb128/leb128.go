// Copyright 2018 The go-interpreter Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package leb128 provides a function for reading the unsigned LEB128 integers
// used for section sizes in the WebAssembly binary format.
package leb128

import (
	"errors"
	"io"
)

// ErrOverflow is returned when an encoded value does not fit in 32 bits.
var ErrOverflow = errors.New("leb128: integer overflow")

// ReadVarUint32 reads an unsigned LEB128-encoded 32-bit integer from r.
func ReadVarUint32(r io.Reader) (uint32, error) {
	var (
		b     [1]byte
		res   uint32
		shift uint
	)
	for i := 0; ; i++ {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			if err == io.EOF && i != 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, err
		}
		cur := uint32(b[0])
		if i == 4 && cur&0xf0 != 0 {
			return 0, ErrOverflow
		}
		res |= (cur & 0x7f) << shift
		if cur&0x80 == 0 {
			return res, nil
		}
		shift += 7
	}
}

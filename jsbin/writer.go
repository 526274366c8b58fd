// Package jsbin converts a stream of bytes into a JavaScript module that reconstructs and
// instantiates those bytes as a WebAssembly module at load time.
//
// Bytes written to a Writer are staged in a fixed-size window whose capacity is a multiple
// of three. Each full window is base64-encoded and emitted as one string literal in the
// module's chunk container, so every chunk but the last decodes to a whole number of
// base64 quanta and the chunks can be decoded independently and concatenated. Only the
// terminal chunk written by Close may carry padding.
package jsbin

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// DefaultWords is the default window size, in base64 quanta (3 input bytes each).
const DefaultWords = 8192

type flusher interface {
	Flush() error
}

// Writer is an io.WriteCloser that emits its input as a loadable JavaScript module. A
// Writer must be closed to produce a complete module. Writers are not safe for concurrent
// use.
type Writer struct {
	w             io.Writer
	importsModule string

	buf []byte // window; len(buf) is a multiple of 3
	out []byte // encoded window
	n   int    // occupied bytes in buf

	chunks   int
	started  bool
	finished bool
}

// NewWriter returns a Writer with the default window size that writes a module to w. The
// generated module imports its host bindings from importsModule.
func NewWriter(w io.Writer, importsModule string) *Writer {
	return NewWriterSize(w, importsModule, DefaultWords)
}

// NewWriterSize returns a Writer whose window holds words*3 bytes.
func NewWriterSize(w io.Writer, importsModule string, words int) *Writer {
	if words < 1 {
		words = 1
	}
	return &Writer{
		w:             w,
		importsModule: importsModule,
		buf:           make([]byte, words*3),
		out:           make([]byte, words*4),
	}
}

// WindowSize returns the capacity of the window in bytes.
func (w *Writer) WindowSize() int {
	return len(w.buf)
}

// Chunks returns the number of chunks emitted so far.
func (w *Writer) Chunks() int {
	return w.chunks
}

// Write stages p in the window, emitting one chunk each time the window fills. Write
// always consumes all of p unless the destination fails.
func (w *Writer) Write(p []byte) (int, error) {
	if w.finished {
		return 0, &IOError{Op: "write", Err: ErrFinished}
	}

	written := 0
	for len(p) > 0 {
		n := copy(w.buf[w.n:], p)
		w.n += n
		written += n
		p = p[n:]

		if w.n == len(w.buf) {
			if err := w.emit(); err != nil {
				return written, err
			}
		}
	}
	return written, nil
}

// Close emits any buffered bytes as the terminal chunk, writes the loader, and flushes the
// destination if it supports flushing. Close is a no-op on a closed Writer.
func (w *Writer) Close() error {
	if w.finished {
		return nil
	}
	if err := w.emit(); err != nil {
		return err
	}
	if _, err := io.WriteString(w.w, epilog); err != nil {
		return &IOError{Op: "write epilog", Err: err}
	}
	w.finished = true

	if f, ok := w.w.(flusher); ok {
		if err := f.Flush(); err != nil {
			return &IOError{Op: "flush", Err: err}
		}
	}
	return nil
}

func (w *Writer) header() (string, error) {
	if !utf8.ValidString(w.importsModule) {
		return "", &EncodingError{What: "imports module", Err: errors.New("invalid UTF-8")}
	}
	quoted, err := json.Marshal(w.importsModule)
	if err != nil {
		return "", &EncodingError{What: "imports module", Err: err}
	}
	return fmt.Sprintf(headerFormat, quoted, quoted), nil
}

// emit encodes the occupied part of the window as the next chunk. The window is only
// reset once the chunk has been written.
func (w *Writer) emit() error {
	sz := base64.StdEncoding.EncodedLen(w.n)
	base64.StdEncoding.Encode(w.out[:sz], w.buf[:w.n])

	if !w.started {
		header, err := w.header()
		if err != nil {
			return err
		}
		if _, err := io.WriteString(w.w, header+prolog); err != nil {
			return &IOError{Op: "write prolog", Err: err}
		}
		w.started = true
	} else if _, err := io.WriteString(w.w, separator); err != nil {
		return &IOError{Op: "write separator", Err: err}
	}

	if _, err := w.w.Write(w.out[:sz]); err != nil {
		return &IOError{Op: "write chunk", Err: err}
	}
	w.n = 0
	w.chunks++
	return nil
}

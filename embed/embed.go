// Package embed compresses a WebAssembly module and writes it out as a JavaScript module
// using package jsbin.
package embed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zlib"

	"github.com/pgavlin/wasmjs/jsbin"
)

// Options records embedding options.
type Options struct {
	// ImportsModule is the module specifier the generated module imports its host bindings from.
	ImportsModule string
	// Level is the zlib compression level. The zero value selects zlib.BestCompression.
	Level int
	// Words sets the chunk window size in base64 quanta. The zero value selects
	// jsbin.DefaultWords.
	Words int
}

func (o *Options) level() int {
	if o == nil || o.Level == 0 {
		return zlib.BestCompression
	}
	return o.Level
}

func (o *Options) words() int {
	if o == nil || o.Words == 0 {
		return jsbin.DefaultWords
	}
	return o.Words
}

func (o *Options) importsModule() string {
	if o == nil {
		return ""
	}
	return o.ImportsModule
}

// Stats describes a completed embedding.
type Stats struct {
	InputBytes      int64
	CompressedBytes int64
	Chunks          int
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}

// Module reads a WebAssembly module from r and writes the JavaScript module that embeds it
// to w. The output is only complete if Module returns a nil error.
func Module(w io.Writer, r io.Reader, options *Options) (Stats, error) {
	js := jsbin.NewWriterSize(w, options.importsModule(), options.words())
	compressed := &countingWriter{w: js}

	zw, err := zlib.NewWriterLevel(compressed, options.level())
	if err != nil {
		return Stats{}, err
	}

	n, err := io.Copy(zw, r)
	if err != nil {
		return Stats{}, fmt.Errorf("compressing module: %w", err)
	}
	if err = zw.Close(); err != nil {
		return Stats{}, fmt.Errorf("compressing module: %w", err)
	}
	if err = js.Close(); err != nil {
		return Stats{}, err
	}

	return Stats{
		InputBytes:      n,
		CompressedBytes: compressed.n,
		Chunks:          js.Chunks(),
	}, nil
}

// File embeds the module at inPath into a new JavaScript module at outPath. The output is
// synced to stable storage before File returns. If embedding fails, the partial output is
// removed.
func File(outPath, inPath string, options *Options) (stats Stats, err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Stats{}, err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Stats{}, err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(outPath)
		}
	}()

	if stats, err = Module(bufio.NewWriter(out), in, options); err != nil {
		return Stats{}, err
	}
	if err = syncFile(out); err != nil {
		return Stats{}, fmt.Errorf("syncing %v: %w", outPath, err)
	}
	return stats, nil
}

// IsWriteError reports whether err was caused by a failure to write the output.
func IsWriteError(err error) bool {
	var ioErr *jsbin.IOError
	return errors.As(err, &ioErr)
}

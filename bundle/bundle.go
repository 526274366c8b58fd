// Package bundle turns the output of the wasm-bindgen CLI into a set of JavaScript files
// that carry the compiled module inline.
package bundle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pgavlin/wasmjs/embed"
)

const (
	typesPrologue = "/* tslint:disable */\n/* eslint-disable */\ndeclare namespace WasmDecls {\n"
	typesEpilogue = "\n}\nexport type WasmExports = typeof WasmDecls;\nexport function getWasm(): Promise<typeof WasmExports>;\n"
)

// Options configures a bundling run.
type Options struct {
	// BindgenDir holds <prefix>_bg.wasm, <prefix>_bg.js, and optionally <prefix>.d.ts.
	BindgenDir string
	// OutDir receives the generated files. It is created if necessary.
	OutDir string
	// NamePrefix is the common prefix of the input and output file names.
	NamePrefix string

	// Level and Words are passed to embed.Module.
	Level int
	Words int

	// NoTypes disables generation of the TypeScript declarations.
	NoTypes bool

	Logger *log.Logger
}

// Files names the generated files for a prefix.
type Files struct {
	Wasm    string
	Imports string
	Types   string
	Module  string
}

// FilesFor returns the file names for the given prefix.
func FilesFor(prefix string) Files {
	return Files{
		Wasm:    prefix + "_bg.wasm",
		Imports: prefix + "_bg.js",
		Types:   prefix + ".d.ts",
		Module:  prefix + ".js",
	}
}

// Result describes a completed bundling run.
type Result struct {
	Files    []string
	Stats    embed.Stats
	Duration time.Duration
}

func (o *Options) logger() *log.Logger {
	if o.Logger == nil {
		return log.New(io.Discard)
	}
	return o.Logger
}

// Run generates the bundle described by opts.
func Run(opts Options) (*Result, error) {
	if opts.NamePrefix == "" {
		return nil, errors.New("bundle: missing name prefix")
	}

	same, err := sameDir(opts.OutDir, opts.BindgenDir)
	if err != nil {
		return nil, err
	}
	if same {
		return nil, fmt.Errorf("bundle: output directory %v is the wasm-bindgen output directory", opts.OutDir)
	}

	started := time.Now()
	logger := opts.logger()
	files := FilesFor(opts.NamePrefix)

	logger.Info("Creating output directory...", "dir", opts.OutDir)
	if err := os.MkdirAll(opts.OutDir, 0755); err != nil {
		return nil, err
	}

	result := &Result{}

	logger.Info("Embedding wasm module...", "module", files.Wasm)
	stats, err := embed.File(
		filepath.Join(opts.OutDir, files.Module),
		filepath.Join(opts.BindgenDir, files.Wasm),
		&embed.Options{ImportsModule: "./" + files.Imports, Level: opts.Level, Words: opts.Words})
	if err != nil {
		return nil, fmt.Errorf("embedding %v: %w", files.Wasm, err)
	}
	result.Stats = stats
	result.Files = append(result.Files, files.Module)
	logger.Debug("Embedded wasm module.",
		"input", stats.InputBytes, "compressed", stats.CompressedBytes, "chunks", stats.Chunks)

	if err := copyFile(filepath.Join(opts.OutDir, files.Imports), filepath.Join(opts.BindgenDir, files.Imports)); err != nil {
		return nil, fmt.Errorf("copying %v: %w", files.Imports, err)
	}
	result.Files = append(result.Files, files.Imports)

	if !opts.NoTypes {
		typesPath := filepath.Join(opts.BindgenDir, files.Types)
		switch _, err := os.Stat(typesPath); {
		case err == nil:
			logger.Info("Wrapping TypeScript declarations...", "types", files.Types)
			if err := wrapTypes(filepath.Join(opts.OutDir, files.Types), typesPath); err != nil {
				return nil, fmt.Errorf("wrapping %v: %w", files.Types, err)
			}
			result.Files = append(result.Files, files.Types)
		case errors.Is(err, os.ErrNotExist):
			logger.Warn("No TypeScript declarations found.", "types", files.Types)
		default:
			return nil, err
		}
	}

	result.Duration = time.Since(started)
	logger.Info(fmt.Sprintf("Done in %v.", Elapsed(result.Duration)))
	logger.Info(fmt.Sprintf("JavaScript files created in %v.", opts.OutDir))
	return result, nil
}

// sameDir reports whether a and b name the same directory. Directories that do not exist
// yet are compared by their cleaned absolute paths.
func sameDir(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}

	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}

func createFile(path string, write func(w *bufio.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	w := bufio.NewWriter(f)
	if err = write(w); err != nil {
		return err
	}
	if err = w.Flush(); err != nil {
		return err
	}
	return f.Sync()
}

func copyFile(dest, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	return createFile(dest, func(w *bufio.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
}

func wrapTypes(dest, src string) error {
	types, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	return createFile(dest, func(w *bufio.Writer) error {
		w.WriteString(typesPrologue)
		w.Write(types)
		_, err := w.WriteString(typesEpilogue)
		return err
	})
}

// Elapsed renders a duration for display on a console.
func Elapsed(d time.Duration) string {
	secs := int64(d / time.Second)
	if secs >= 60 {
		return fmt.Sprintf("%dm %02ds", secs/60, secs%60)
	}
	return fmt.Sprintf("%d.%02ds", secs, int64(d%time.Second/(10*time.Millisecond)))
}

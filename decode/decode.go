// Package decode reconstructs the artifact embedded in a module produced by package jsbin.
//
// Decoding follows the same protocol as the loader emitted into the module: the chunk
// container literal is evaluated (with its trailing reversal) by a JavaScript engine, chunks
// are popped from the end of the container until it is empty, and each chunk is
// base64-decoded on its own. The concatenated bytes form a zlib stream that inflates to the
// original artifact.
package decode

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/dop251/goja"
	"github.com/klauspost/compress/zlib"

	"github.com/pgavlin/wasmjs/jsbin"
	"github.com/pgavlin/wasmjs/wasm"
)

// Stage identifies the step of the load pipeline that failed.
type Stage string

const (
	StageParse       Stage = "parse"
	StageDecode      Stage = "decode"
	StageDecompress  Stage = "decompress"
	StageInstantiate Stage = "instantiate"
)

// LoadError records a failure to reconstruct an embedded artifact.
type LoadError struct {
	Stage Stage
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load failed during %s: %v", e.Stage, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

var (
	stackDecl = []byte("const " + jsbin.StackName + " = ")
	reversal  = []byte("].reverse()")
)

var errNoContainer = errors.New("chunk container not found")

// container returns the source of the chunk container expression, including the reversal.
func container(src []byte) (string, error) {
	start := bytes.Index(src, stackDecl)
	if start < 0 {
		return "", errNoContainer
	}
	start += len(stackDecl)

	end := bytes.Index(src[start:], reversal)
	if end < 0 {
		return "", errNoContainer
	}
	return string(src[start : start+end+len(reversal)]), nil
}

// Chunks evaluates the chunk container in src and pops it until it is empty. The chunks
// are returned in pop order, which is the order in which they were encoded.
func Chunks(src []byte) ([]string, error) {
	expr, err := container(src)
	if err != nil {
		return nil, &LoadError{Stage: StageParse, Err: err}
	}

	vm := goja.New()
	v, err := vm.RunString(expr)
	if err != nil {
		return nil, &LoadError{Stage: StageParse, Err: err}
	}
	stack := v.ToObject(vm)

	pop, ok := goja.AssertFunction(stack.Get("pop"))
	if !ok {
		return nil, &LoadError{Stage: StageParse, Err: errors.New("chunk container is not an array")}
	}

	var chunks []string
	for stack.Get("length").ToInteger() > 0 {
		c, err := pop(stack)
		if err != nil {
			return nil, &LoadError{Stage: StageParse, Err: err}
		}
		s, ok := c.Export().(string)
		if !ok {
			return nil, &LoadError{Stage: StageParse, Err: fmt.Errorf("chunk %d is not a string", len(chunks))}
		}
		chunks = append(chunks, s)
	}
	return chunks, nil
}

// Compressed returns the compressed byte stream carried by the module in src.
func Compressed(src []byte) ([]byte, error) {
	chunks, err := Chunks(src)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for i, c := range chunks {
		b, err := base64.StdEncoding.DecodeString(c)
		if err != nil {
			return nil, &LoadError{Stage: StageDecode, Err: fmt.Errorf("chunk %d: %w", i, err)}
		}
		buf.Write(b)
	}
	return buf.Bytes(), nil
}

// Decode returns the artifact embedded in the module in src.
func Decode(src []byte) ([]byte, error) {
	compressed, err := Compressed(src)
	if err != nil {
		return nil, err
	}

	zr, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, &LoadError{Stage: StageDecompress, Err: err}
	}
	defer zr.Close()

	artifact, err := io.ReadAll(zr)
	if err != nil {
		return nil, &LoadError{Stage: StageDecompress, Err: err}
	}
	return artifact, nil
}

// Load decodes the artifact embedded in src and reads it as a WebAssembly module.
func Load(src []byte) (*wasm.Module, []byte, error) {
	artifact, err := Decode(src)
	if err != nil {
		return nil, nil, err
	}
	m, err := wasm.ReadModule(bytes.NewReader(artifact))
	if err != nil {
		return nil, nil, &LoadError{Stage: StageInstantiate, Err: err}
	}
	return m, artifact, nil
}

package bundle

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wasmjs/decode"
)

var module = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x0a, 0x04, 0x01, 0x02, 0x00, 0x0b,
}

const importsJS = "export function __wbg_set_wasm(val) {}\n"

func bindgenDir(t *testing.T, prefix string, types bool) string {
	dir := t.TempDir()
	files := FilesFor(prefix)
	require.NoError(t, os.WriteFile(filepath.Join(dir, files.Wasm), module, 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, files.Imports), []byte(importsJS), 0600))
	if types {
		require.NoError(t, os.WriteFile(filepath.Join(dir, files.Types), []byte("export function greet(name: string): void;"), 0600))
	}
	return dir
}

func TestRun(t *testing.T) {
	in := bindgenDir(t, "hello", true)
	out := filepath.Join(t.TempDir(), "dist")

	var logs bytes.Buffer
	result, err := Run(Options{
		BindgenDir: in,
		OutDir:     out,
		NamePrefix: "hello",
		Logger:     log.New(&logs),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"hello.js", "hello_bg.js", "hello.d.ts"}, result.Files)
	assert.Equal(t, int64(len(module)), result.Stats.InputBytes)
	assert.Contains(t, logs.String(), "JavaScript files created in")

	src, err := os.ReadFile(filepath.Join(out, "hello.js"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(src), "import * as importObject from \"./hello_bg.js\";"))
	_, artifact, err := decode.Load(src)
	require.NoError(t, err)
	assert.Equal(t, module, artifact)

	imports, err := os.ReadFile(filepath.Join(out, "hello_bg.js"))
	require.NoError(t, err)
	assert.Equal(t, importsJS, string(imports))

	types, err := os.ReadFile(filepath.Join(out, "hello.d.ts"))
	require.NoError(t, err)
	assert.Equal(t, typesPrologue+"export function greet(name: string): void;"+typesEpilogue, string(types))

	_, err = os.Stat(filepath.Join(out, "hello_bg.wasm"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunWithoutTypes(t *testing.T) {
	out := t.TempDir()

	result, err := Run(Options{BindgenDir: bindgenDir(t, "a", false), OutDir: out, NamePrefix: "a"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.js", "a_bg.js"}, result.Files)

	result, err = Run(Options{BindgenDir: bindgenDir(t, "b", true), OutDir: out, NamePrefix: "b", NoTypes: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.js", "b_bg.js"}, result.Files)
	_, err = os.Stat(filepath.Join(out, "b.d.ts"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunMissingModule(t *testing.T) {
	out := t.TempDir()
	_, err := Run(Options{BindgenDir: t.TempDir(), OutDir: out, NamePrefix: "x"})
	require.Error(t, err)

	_, err = os.Stat(filepath.Join(out, "x.js"))
	assert.True(t, os.IsNotExist(err))

	_, err = Run(Options{BindgenDir: t.TempDir(), OutDir: out})
	assert.Error(t, err)
}

func TestRunIntoBindgenDir(t *testing.T) {
	in := bindgenDir(t, "p", true)

	for _, out := range []string{in, filepath.Join(in, "."), filepath.Join(in, "sub", "..")} {
		_, err := Run(Options{BindgenDir: in, OutDir: out, NamePrefix: "p", NoTypes: true})
		require.Error(t, err, out)
		assert.Contains(t, err.Error(), "is the wasm-bindgen output directory")
	}

	imports, err := os.ReadFile(filepath.Join(in, "p_bg.js"))
	require.NoError(t, err)
	assert.Equal(t, importsJS, string(imports))

	_, err = os.Stat(filepath.Join(in, "p.js"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunIntoBindgenDirSymlink(t *testing.T) {
	in := bindgenDir(t, "p", false)
	link := filepath.Join(t.TempDir(), "link")
	require.NoError(t, os.Symlink(in, link))

	_, err := Run(Options{BindgenDir: in, OutDir: link, NamePrefix: "p"})
	require.Error(t, err)

	imports, err := os.ReadFile(filepath.Join(in, "p_bg.js"))
	require.NoError(t, err)
	assert.Equal(t, importsJS, string(imports))
}

func TestElapsed(t *testing.T) {
	assert.Equal(t, "0.00s", Elapsed(0))
	assert.Equal(t, "3.25s", Elapsed(3250*time.Millisecond))
	assert.Equal(t, "1m 05s", Elapsed(65*time.Second))
	assert.Equal(t, "12m 00s", Elapsed(12*time.Minute+300*time.Millisecond))
}

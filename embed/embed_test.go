package embed_test

import (
	"bytes"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgavlin/wasmjs/decode"
	"github.com/pgavlin/wasmjs/embed"
)

func compressible(r *rand.Rand, n int) []byte {
	words := [][]byte{[]byte("\x00asm"), []byte("memory"), []byte("__wbindgen_start"), {0x41, 0x00, 0x0b}}
	var buf bytes.Buffer
	for buf.Len() < n {
		if r.Intn(4) == 0 {
			buf.WriteByte(byte(r.Intn(256)))
		} else {
			buf.Write(words[r.Intn(len(words))])
		}
	}
	return buf.Bytes()[:n]
}

func TestModuleRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	for _, size := range []int{0, 1, 24576, 24577, 3 << 20} {
		input := compressible(r, size)

		var out bytes.Buffer
		stats, err := embed.Module(&out, bytes.NewReader(input), &embed.Options{ImportsModule: "./x_bg.js"})
		require.NoError(t, err)
		assert.Equal(t, int64(size), stats.InputBytes)
		assert.True(t, stats.Chunks >= 1)
		assert.Equal(t, int(stats.CompressedBytes/24576)+1, stats.Chunks)

		artifact, err := decode.Decode(out.Bytes())
		require.NoError(t, err)
		assert.True(t, bytes.Equal(input, artifact), "size %d", size)
	}
}

func TestModuleOptions(t *testing.T) {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	input := compressible(r, 100000)

	var out bytes.Buffer
	stats, err := embed.Module(&out, bytes.NewReader(input), &embed.Options{
		ImportsModule: "./y_bg.js",
		Level:         zlib.BestSpeed,
		Words:         16,
	})
	require.NoError(t, err)
	assert.Equal(t, int(stats.CompressedBytes/48)+1, stats.Chunks)

	artifact, err := decode.Decode(out.Bytes())
	require.NoError(t, err)
	assert.Equal(t, input, artifact)

	_, err = embed.Module(&bytes.Buffer{}, bytes.NewReader(input), &embed.Options{Level: 42})
	assert.Error(t, err)
}

type brokenWriter struct{}

func (brokenWriter) Write(b []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestModuleWriteFailure(t *testing.T) {
	_, err := embed.Module(brokenWriter{}, bytes.NewReader(make([]byte, 1<<20)), nil)
	require.Error(t, err)
	assert.True(t, embed.IsWriteError(err))
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	input := compressible(r, 200000)

	inPath := filepath.Join(dir, "m_bg.wasm")
	require.NoError(t, os.WriteFile(inPath, input, 0600))

	outPath := filepath.Join(dir, "m.js")
	stats, err := embed.File(outPath, inPath, &embed.Options{ImportsModule: "./m_bg.js"})
	require.NoError(t, err)
	assert.Equal(t, int64(len(input)), stats.InputBytes)

	src, err := os.ReadFile(outPath)
	require.NoError(t, err)
	artifact, err := decode.Decode(src)
	require.NoError(t, err)
	assert.Equal(t, input, artifact)
}

func TestFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "m.js")

	_, err := embed.File(outPath, filepath.Join(dir, "missing.wasm"), nil)
	require.Error(t, err)

	_, err = os.Stat(outPath)
	assert.True(t, os.IsNotExist(err))
}

func TestFileRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "m_bg.wasm")
	require.NoError(t, os.WriteFile(inPath, []byte{0, 'a', 's', 'm'}, 0600))

	outPath := filepath.Join(dir, "m.js")
	_, err := embed.File(outPath, inPath, &embed.Options{ImportsModule: "\xff"})
	require.Error(t, err)

	_, err = os.Stat(outPath)
	assert.True(t, os.IsNotExist(err))
}

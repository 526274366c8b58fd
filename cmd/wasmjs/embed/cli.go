package embed

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zlib"
	"github.com/spf13/cobra"

	"github.com/pgavlin/wasmjs/embed"
	"github.com/pgavlin/wasmjs/jsbin"
)

// names derives the default output path and imports module from the module path. Modules
// produced by wasm-bindgen are named <prefix>_bg.wasm.
func names(modulePath string) (outputPath, importsModule string) {
	baseName := filepath.Base(modulePath)
	baseName = baseName[:len(baseName)-len(filepath.Ext(baseName))]
	prefix := strings.TrimSuffix(baseName, "_bg")
	return prefix + ".js", "./" + prefix + "_bg.js"
}

func Command(logger *log.Logger) *cobra.Command {
	var importsModule string
	var outputPath string
	var level int
	var words int

	command := &cobra.Command{
		Use:   "embed [path to module]",
		Short: "Embed a WebAssembly module in a JavaScript module",
		Long: "Embed a WebAssembly module in a JavaScript module. The generated module exports\n" +
			"a getWasm function that resolves to the instantiated module's imports object.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one argument")
			}
			if level < zlib.BestSpeed || level > zlib.BestCompression {
				return fmt.Errorf("--level must be between %d and %d", zlib.BestSpeed, zlib.BestCompression)
			}
			if words < 0 {
				return errors.New("--words must not be negative")
			}

			defaultOutput, defaultImports := names(args[0])
			if importsModule == "" {
				importsModule = defaultImports
			}
			options := embed.Options{
				ImportsModule: importsModule,
				Level:         level,
				Words:         words,
			}

			var stats embed.Stats
			var err error
			switch outputPath {
			case "-":
				stats, err = embedStdout(cmd, args[0], &options)
			case "":
				outputPath = defaultOutput
				fallthrough
			default:
				stats, err = embed.File(outputPath, args[0], &options)
			}
			if err != nil {
				if embed.IsWriteError(err) {
					return fmt.Errorf("writing output: %w", err)
				}
				return err
			}

			logger.Info("Embedded module.",
				"module", args[0],
				"imports", importsModule,
				"bytes", stats.InputBytes,
				"compressed", stats.CompressedBytes,
				"chunks", stats.Chunks)
			return nil
		},
	}

	command.PersistentFlags().StringVarP(&importsModule, "imports", "i", "", "the module to import host bindings from. Defaults to './<name>_bg.js'")
	command.PersistentFlags().StringVarP(&outputPath, "out", "o", "", "the path for the output file. Defaults to the name of the input file without '_bg' + '.js'; '-' writes to stdout")
	command.PersistentFlags().IntVarP(&level, "level", "l", zlib.BestCompression, "the zlib compression level (1-9)")
	command.PersistentFlags().IntVar(&words, "words", jsbin.DefaultWords, "the chunk size in base64 words (3 input bytes each)")

	return command
}

func embedStdout(cmd *cobra.Command, modulePath string, options *embed.Options) (embed.Stats, error) {
	f, err := os.Open(modulePath)
	if err != nil {
		return embed.Stats{}, err
	}
	defer f.Close()

	return embed.Module(bufio.NewWriter(cmd.OutOrStdout()), f, options)
}

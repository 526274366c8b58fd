package dump

import (
	"bufio"
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgavlin/wasmjs/decode"
	"github.com/pgavlin/wasmjs/wasm"
)

func Command() *cobra.Command {
	var chunks bool

	command := &cobra.Command{
		Use:   "dump [path to module]",
		Short: "Dump WebAssembly and generated modules",
		Long: "Dump the section table of a WebAssembly module, or the chunk table of a\n" +
			"generated JavaScript module, in CSV format",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return errors.New("expected exactly one argument")
			}

			w := bufio.NewWriter(cmd.OutOrStdout())
			defer w.Flush()

			if chunks {
				src, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				c, err := decode.Chunks(src)
				if err != nil {
					return err
				}
				return dumpChunks(w, c)
			}

			mod, err := wasm.ReadFile(args[0])
			if err != nil {
				return err
			}
			return dumpSections(w, mod)
		},
	}

	command.PersistentFlags().BoolVarP(&chunks, "chunks", "c", false, "dump the chunk table of a generated JavaScript module")

	return command
}

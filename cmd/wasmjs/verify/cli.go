package verify

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pgavlin/wasmjs/decode"
)

func Command() *cobra.Command {
	var raw bool

	command := &cobra.Command{
		Use:   "verify [path to generated module] [path to original module]",
		Short: "Check that a generated module reconstructs its WebAssembly module",
		Long: "Decode the WebAssembly module embedded in a generated JavaScript module and,\n" +
			"if given, compare it with the original module byte for byte.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) < 1 || len(args) > 2 {
				return errors.New("expected one or two arguments")
			}

			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			chunks, err := decode.Chunks(src)
			if err != nil {
				return err
			}

			var artifact []byte
			sections := 0
			if raw {
				artifact, err = decode.Decode(src)
			} else {
				m, b, lerr := decode.Load(src)
				if lerr == nil {
					sections = len(m.Sections)
				}
				artifact, err = b, lerr
			}
			if err != nil {
				return err
			}

			if len(args) == 2 {
				original, err := os.ReadFile(args[1])
				if err != nil {
					return err
				}
				if !bytes.Equal(original, artifact) {
					return fmt.Errorf("%v does not match %v", args[0], args[1])
				}
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%v: %d chunks, %d bytes", args[0], len(chunks), len(artifact))
			if !raw {
				fmt.Fprintf(w, ", %d sections", sections)
			}
			fmt.Fprintln(w)
			return nil
		},
	}

	command.PersistentFlags().BoolVar(&raw, "raw", false, "do not read the decoded artifact as a WebAssembly module")

	return command
}

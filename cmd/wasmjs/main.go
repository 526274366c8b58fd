package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pgavlin/wasmjs/cmd/wasmjs/dump"
	"github.com/pgavlin/wasmjs/cmd/wasmjs/embed"
	"github.com/pgavlin/wasmjs/cmd/wasmjs/pack"
	"github.com/pgavlin/wasmjs/cmd/wasmjs/verify"
)

var version = "<unknown>"

func configureCLI(logger *log.Logger) *cobra.Command {
	var cpuProfile string
	var memProfile string
	var logLevel string
	var quiet bool

	rootCommand := &cobra.Command{
		Use:           "wasmjs",
		Short:         "wasmjs WebAssembly packager",
		Long:          "wasmjs - embed WebAssembly modules in JavaScript",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			if quiet {
				level = log.ErrorLevel
			}
			logger.SetLevel(level)

			if cpuProfile != "" {
				f, err := os.Create(cpuProfile)
				if err != nil {
					return err
				}
				pprof.StartCPUProfile(f)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if cpuProfile != "" {
				pprof.StopCPUProfile()
			}

			if memProfile != "" {
				f, err := os.Create(memProfile)
				if err != nil {
					return err
				}
				runtime.GC()
				pprof.WriteHeapProfile(f)
			}

			return nil
		},
	}

	rootCommand.AddCommand(dump.Command())
	rootCommand.AddCommand(embed.Command(logger))
	rootCommand.AddCommand(pack.Command(logger))
	rootCommand.AddCommand(verify.Command())

	rootCommand.PersistentFlags().StringVar(&logLevel, "log-level", "info", "the maximum level of messages that should be logged (debug, info, warn, error)")
	rootCommand.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	rootCommand.PersistentFlags().StringVar(&cpuProfile, "cpu", "", "emit Go CPU profile data to this path")
	rootCommand.PersistentFlags().StringVar(&memProfile, "mem", "", "emit Go memory profile data to this path")

	rootCommand.PersistentFlags().MarkHidden("cpu")
	rootCommand.PersistentFlags().MarkHidden("mem")

	return rootCommand
}

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: "wasmjs",
	})
	rootCommand := configureCLI(logger)

	if err := rootCommand.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

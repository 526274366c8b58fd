package pack

import (
	"errors"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pgavlin/wasmjs/bundle"
	"github.com/pgavlin/wasmjs/jsbin"
	"github.com/pgavlin/wasmjs/manifest"
)

func Command(logger *log.Logger) *cobra.Command {
	var bindgenDir string
	var outDir string
	var outName string
	var noTypes bool
	var dev, debug, release, profiling bool
	var profileName string
	var words int

	command := &cobra.Command{
		Use:   "pack [path to crate]",
		Short: "Package wasm-bindgen output as JavaScript",
		Long: "Package the output of wasm-bindgen for a crate as JavaScript files that embed\n" +
			"the compiled WebAssembly module. The crate is located by searching for Cargo.toml\n" +
			"upwards from the given path or the current directory.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 1 {
				return errors.New("expected at most one argument")
			}

			start := "."
			if len(args) == 1 {
				start = args[0]
			}
			crateDir, err := manifest.FindCrate(start)
			if err != nil {
				return err
			}

			logger.Info("Checking crate configuration...")
			crate, err := manifest.Read(crateDir)
			if err != nil {
				return err
			}
			crate.OutName = outName

			profile, err := manifest.ParseProfile(dev || debug, release, profiling, profileName)
			if err != nil {
				return err
			}
			if profile.IsCustom() {
				logger.Info("Using the custom profile settings.", "profile", profile)
			}
			settings := crate.Settings(profile)
			logger.Debug("Resolved profile.",
				"profile", profile,
				"wasm-bindgen", settings.BindgenArgs(),
				"level", settings.CompressionLevel)

			if bindgenDir == "" {
				bindgenDir = filepath.Join(crateDir, "target", "wasm-bindgen")
			}
			if !filepath.IsAbs(outDir) {
				outDir = filepath.Join(crateDir, outDir)
			}

			_, err = bundle.Run(bundle.Options{
				BindgenDir: bindgenDir,
				OutDir:     filepath.Clean(outDir),
				NamePrefix: crate.NamePrefix(),
				Level:      settings.CompressionLevel,
				Words:      words,
				NoTypes:    noTypes,
				Logger:     logger,
			})
			return err
		},
	}

	flags := command.PersistentFlags()
	flags.StringVarP(&bindgenDir, "bindgen-dir", "b", "", "the wasm-bindgen output directory. Defaults to <crate>/target/wasm-bindgen")
	flags.StringVarP(&outDir, "out-dir", "d", "dist", "the output directory, relative to the crate")
	flags.StringVar(&outName, "out-name", "", "the prefix of the generated file names. Defaults to the library name")
	flags.BoolVar(&noTypes, "no-typescript", false, "do not generate a *.d.ts file")
	flags.BoolVar(&dev, "dev", false, "use the dev profile")
	flags.BoolVar(&debug, "debug", false, "deprecated; use --dev")
	flags.BoolVar(&release, "release", false, "use the release profile")
	flags.BoolVar(&profiling, "profiling", false, "use the profiling profile")
	flags.StringVar(&profileName, "profile", "", "use a user-defined profile")
	flags.IntVar(&words, "words", jsbin.DefaultWords, "the chunk size in base64 words (3 input bytes each)")

	flags.MarkDeprecated("debug", "use --dev instead")

	return command
}

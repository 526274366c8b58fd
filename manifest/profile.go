package manifest

import (
	"errors"
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// Profile selects a set of build settings.
type Profile string

const (
	// Dev enables debug glue and favors build speed.
	Dev Profile = "dev"
	// Release favors output size.
	Release Profile = "release"
	// Profiling keeps names for profilers.
	Profiling Profile = "profiling"
)

var errProfileConflict = errors.New("can only supply one of the --dev, --release, --profiling, or --profile 'name' flags")

// ParseProfile picks the profile named by a set of command-line flags. At most one flag may
// be set; Release is the default. Any other name selects a custom profile.
func ParseProfile(dev, release, profiling bool, custom string) (Profile, error) {
	n := 0
	for _, set := range []bool{dev, release, profiling, custom != ""} {
		if set {
			n++
		}
	}
	switch {
	case n > 1:
		return "", errProfileConflict
	case dev:
		return Dev, nil
	case profiling:
		return Profiling, nil
	case custom != "":
		return Profile(custom), nil
	default:
		return Release, nil
	}
}

// IsCustom reports whether p is a user-defined profile.
func (p Profile) IsCustom() bool {
	return p != Dev && p != Release && p != Profiling
}

// BindgenConfig is the wasm-bindgen table of a profile in Cargo.toml. Unset values are nil.
type BindgenConfig struct {
	DebugJSGlue           *bool `toml:"debug-js-glue"`
	DemangleNameSection   *bool `toml:"demangle-name-section"`
	DWARFDebugInfo        *bool `toml:"dwarf-debug-info"`
	OmitDefaultModulePath *bool `toml:"omit-default-module-path"`
	SplitLinkedModules    *bool `toml:"split-linked-modules"`
}

// ProfileConfig is a [package.metadata.wasm-js.profile.<name>] table.
type ProfileConfig struct {
	WasmBindgen      BindgenConfig `toml:"wasm-bindgen"`
	CompressionLevel *int          `toml:"compression-level"`
}

// Settings are the resolved settings of a profile.
type Settings struct {
	DebugJSGlue           bool
	DemangleNameSection   bool
	DWARFDebugInfo        bool
	OmitDefaultModulePath bool
	SplitLinkedModules    bool

	// CompressionLevel is the zlib level used when embedding the module.
	CompressionLevel int
}

func (c ProfileConfig) validate(name string) error {
	if c.CompressionLevel == nil {
		return nil
	}
	if l := *c.CompressionLevel; l < zlib.BestSpeed || l > zlib.BestCompression {
		return fmt.Errorf("profile %v: compression-level must be between %d and %d, got %d",
			name, zlib.BestSpeed, zlib.BestCompression, l)
	}
	return nil
}

func defaultSettings(p Profile) Settings {
	return Settings{
		DebugJSGlue:         p == Dev,
		DemangleNameSection: true,
		CompressionLevel:    zlib.BestCompression,
	}
}

func pick(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func (c ProfileConfig) resolve(defaults Settings) Settings {
	s := Settings{
		DebugJSGlue:           pick(c.WasmBindgen.DebugJSGlue, defaults.DebugJSGlue),
		DemangleNameSection:   pick(c.WasmBindgen.DemangleNameSection, defaults.DemangleNameSection),
		DWARFDebugInfo:        pick(c.WasmBindgen.DWARFDebugInfo, defaults.DWARFDebugInfo),
		OmitDefaultModulePath: pick(c.WasmBindgen.OmitDefaultModulePath, defaults.OmitDefaultModulePath),
		SplitLinkedModules:    pick(c.WasmBindgen.SplitLinkedModules, defaults.SplitLinkedModules),
		CompressionLevel:      defaults.CompressionLevel,
	}
	if c.CompressionLevel != nil {
		s.CompressionLevel = *c.CompressionLevel
	}
	return s
}

// BindgenArgs returns the wasm-bindgen command-line flags for these settings.
func (s Settings) BindgenArgs() []string {
	var args []string
	if s.DebugJSGlue {
		args = append(args, "--debug")
	}
	if !s.DemangleNameSection {
		args = append(args, "--no-demangle")
	}
	if s.DWARFDebugInfo {
		args = append(args, "--keep-debug")
	}
	if s.OmitDefaultModulePath {
		args = append(args, "--omit-default-module-path")
	}
	if s.SplitLinkedModules {
		args = append(args, "--split-linked-modules")
	}
	return args
}

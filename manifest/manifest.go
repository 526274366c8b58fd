// Package manifest reads the parts of a crate's Cargo.toml that control packaging.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// FileName is the name of a crate manifest.
const FileName = "Cargo.toml"

type cargoManifest struct {
	Package cargoPackage `toml:"package"`
	Lib     cargoLib     `toml:"lib"`
}

type cargoPackage struct {
	Name     string        `toml:"name"`
	Metadata cargoMetadata `toml:"metadata"`
}

type cargoLib struct {
	Name string `toml:"name"`
}

type cargoMetadata struct {
	WasmJS wasmJSMetadata `toml:"wasm-js"`
}

type wasmJSMetadata struct {
	Profile profileTable `toml:"profile"`
}

type profileTable struct {
	Dev       ProfileConfig `toml:"dev"`
	Release   ProfileConfig `toml:"release"`
	Profiling ProfileConfig `toml:"profiling"`
	Custom    ProfileConfig `toml:"custom"`
}

// Crate records the manifest data of a crate.
type Crate struct {
	// Dir is the directory that contains the manifest.
	Dir string
	// OutName overrides the prefix of generated file names.
	OutName string

	manifest cargoManifest
}

// FindCrate searches start and its parents for a directory that contains a Cargo.toml. If
// none is found, start is returned so that Read can report a useful error.
func FindCrate(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, FileName)); err == nil && info.Mode().IsRegular() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return start, nil
		}
		dir = parent
	}
}

// Read reads the Cargo.toml in dir.
func Read(dir string) (*Crate, error) {
	path := filepath.Join(dir, FileName)
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("crate directory is missing a `%s` file; is `%s` the wrong directory?", FileName, dir)
		}
		return nil, err
	}

	crate := &Crate{Dir: dir}
	if err := toml.Unmarshal(b, &crate.manifest); err != nil {
		return nil, fmt.Errorf("parsing %v: %w", path, err)
	}
	if crate.manifest.Package.Name == "" {
		return nil, fmt.Errorf("%v: missing package name", path)
	}

	profiles := &crate.manifest.Package.Metadata.WasmJS.Profile
	for _, p := range []struct {
		name   string
		config ProfileConfig
	}{
		{"dev", profiles.Dev},
		{"release", profiles.Release},
		{"profiling", profiles.Profiling},
		{"custom", profiles.Custom},
	} {
		if err := p.config.validate(p.name); err != nil {
			return nil, fmt.Errorf("%v: %w", path, err)
		}
	}
	return crate, nil
}

// Name returns the package name.
func (c *Crate) Name() string {
	return c.manifest.Package.Name
}

// LibName returns the name of the crate's library target.
func (c *Crate) LibName() string {
	if c.manifest.Lib.Name != "" {
		return c.manifest.Lib.Name
	}
	return strings.ReplaceAll(c.manifest.Package.Name, "-", "_")
}

// NamePrefix returns the prefix used for generated file names.
func (c *Crate) NamePrefix() string {
	if c.OutName != "" {
		return c.OutName
	}
	return strings.ReplaceAll(c.LibName(), "-", "_")
}

// Settings returns the configuration for the given profile, with unset values taken from
// the profile's defaults.
func (c *Crate) Settings(p Profile) Settings {
	profiles := &c.manifest.Package.Metadata.WasmJS.Profile

	var config ProfileConfig
	switch p {
	case Dev:
		config = profiles.Dev
	case Release:
		config = profiles.Release
	case Profiling:
		config = profiles.Profiling
	default:
		config = profiles.Custom
	}
	return config.resolve(defaultSettings(p))
}

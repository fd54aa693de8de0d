// Package manifest handles zircon.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file looked up in a project directory.
const FileName = "zircon.toml"

// DefaultOutput is the module path used when [output] path is unset.
const DefaultOutput = "example.bcv"

// Manifest represents a zircon.toml project configuration.
type Manifest struct {
	Project Project `toml:"project"`
	Output  Output  `toml:"output"`
	Log     Log     `toml:"log"`

	// Dir is the directory containing the zircon.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name   string `toml:"name"`
	Sample string `toml:"sample"`
}

// Output configures where modules are written.
type Output struct {
	Path string `toml:"path"`
}

// Log configures commonlog.
type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the manifest used when no zircon.toml exists.
func Default() *Manifest {
	m := &Manifest{}
	m.applyDefaults()
	return m
}

// Load parses a zircon.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("parse error in %s: unknown key %q", path, undecoded[0].String())
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}
	if m.Log.Verbosity < 0 {
		return nil, fmt.Errorf("%s: log verbosity must not be negative", path)
	}

	m.applyDefaults()
	return &m, nil
}

// FindAndLoad walks up from startDir to find a zircon.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

func (m *Manifest) applyDefaults() {
	if m.Output.Path == "" {
		m.Output.Path = DefaultOutput
	}
}

// OutputPath returns the output path, resolved against the manifest
// directory when it is relative.
func (m *Manifest) OutputPath() string {
	if filepath.IsAbs(m.Output.Path) || m.Dir == "" {
		return m.Output.Path
	}
	return filepath.Join(m.Dir, m.Output.Path)
}

// LogFile returns the log file path, or nil when logging goes to stderr.
func (m *Manifest) LogFile() *string {
	if m.Log.File == "" {
		return nil
	}
	path := m.Log.File
	if !filepath.IsAbs(path) && m.Dir != "" {
		path = filepath.Join(m.Dir, path)
	}
	return &path
}

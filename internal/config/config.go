// Package config loads the abiverify.toml manifest: toolchain settings,
// suite settings and user-declared layout descriptors and assertions.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest file searched for.
const FileName = "abiverify.toml"

// Manifest is a loaded manifest and where it was found.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Toolchain ToolchainConfig `toml:"toolchain"`
	Suite     SuiteConfig     `toml:"suite"`
	Structs   []StructConfig  `toml:"struct"`
	Asserts   []AssertConfig  `toml:"assert"`
}

type ToolchainConfig struct {
	CC                string `toml:"cc"`
	TempDir           string `toml:"temp_dir"`
	MinVersion        string `toml:"min_version"`
	StrictSearchPaths bool   `toml:"strict_search_paths"`
	// Target is a triple or GOARCH; empty means the host.
	Target string `toml:"target"`
}

type SuiteConfig struct {
	Jobs     int64    `toml:"jobs"`
	Builtin  []string `toml:"builtin"`
	FailFast bool     `toml:"fail_fast"`
}

// StructConfig is a literal layout descriptor.
type StructConfig struct {
	Name       string        `toml:"name"`
	CType      string        `toml:"c_type"`
	Headers    []string      `toml:"headers"`
	GNUSource  bool          `toml:"gnu_source"`
	Guard      string        `toml:"guard"`
	FieldSizes bool          `toml:"field_sizes"`
	Size       *int64        `toml:"size"`
	Fields     []FieldConfig `toml:"field"`
}

type FieldConfig struct {
	Name    string `toml:"name"`
	Offset  *int64 `toml:"offset"`
	Size    *int64 `toml:"size"`
	Private bool   `toml:"private"`
}

// AssertConfig is a named group of static assertions.
type AssertConfig struct {
	Name      string        `toml:"name"`
	Headers   []string      `toml:"headers"`
	GNUSource bool          `toml:"gnu_source"`
	Guard     string        `toml:"guard"`
	Checks    []CheckConfig `toml:"check"`
}

type CheckConfig struct {
	Cond    string `toml:"cond"`
	Message string `toml:"message"`
}

// Find walks up from startDir looking for FileName.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load finds and loads the manifest above startDir. ok is false when there
// is none.
func Load(startDir string) (m *Manifest, ok bool, err error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadFile decodes and validates the manifest at path. Unknown keys are
// errors.
func LoadFile(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("suite", "jobs") && cfg.Suite.Jobs < 0 {
		return Config{}, fmt.Errorf("%s: [suite].jobs must not be negative", path)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	seen := make(map[string]bool, len(c.Structs)+len(c.Asserts))
	unique := func(kind, name string) error {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("[[%s]] entry is missing name", kind)
		}
		if seen[name] {
			return fmt.Errorf("case %q declared twice", name)
		}
		seen[name] = true
		return nil
	}
	for _, s := range c.Structs {
		if err := unique("struct", s.Name); err != nil {
			return err
		}
		if s.Size == nil {
			return fmt.Errorf("[[struct]] %s: missing size", s.Name)
		}
		for i, f := range s.Fields {
			if strings.TrimSpace(f.Name) == "" {
				return fmt.Errorf("[[struct]] %s: field %d is missing name", s.Name, i)
			}
			if f.Offset == nil || f.Size == nil {
				return fmt.Errorf("[[struct]] %s: field %s needs offset and size", s.Name, f.Name)
			}
		}
	}
	for _, a := range c.Asserts {
		if err := unique("assert", a.Name); err != nil {
			return err
		}
		if len(a.Checks) == 0 {
			return fmt.Errorf("[[assert]] %s: no [[assert.check]] entries", a.Name)
		}
		for i, chk := range a.Checks {
			if strings.TrimSpace(chk.Cond) == "" {
				return fmt.Errorf("[[assert]] %s: check %d is missing cond", a.Name, i)
			}
		}
	}
	return nil
}

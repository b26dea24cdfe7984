// Package presets loads named spring configurations from YAML or TOML
// files and registers them with the animation package.
//
// A preset file is a table of named entries. An entry may extend another
// preset from the same file or a built-in one, overriding only the fields
// it sets:
//
//	presets:
//	  snappy:
//	    extends: stiff
//	    clamp: true
//	  fade:
//	    duration: 200ms
//	    easing: easeOutCubic
package presets

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/motion/pkg/animation"
	"github.com/go-drift/motion/pkg/errors"
)

// Format selects the preset file syntax.
type Format int

const (
	YAML Format = iota
	TOML
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	default:
		return 0, errors.Config("presets.FormatOf", "unknown preset file extension %q", filepath.Ext(path))
	}
}

// Entry is one preset as written in a file. Unset fields fall back to the
// extended preset, then to animation.DefaultConfig.
type Entry struct {
	Extends   string   `yaml:"extends,omitempty" toml:"extends,omitempty"`
	Tension   *float64 `yaml:"tension,omitempty" toml:"tension,omitempty"`
	Friction  *float64 `yaml:"friction,omitempty" toml:"friction,omitempty"`
	Mass      *float64 `yaml:"mass,omitempty" toml:"mass,omitempty"`
	Precision *float64 `yaml:"precision,omitempty" toml:"precision,omitempty"`
	Clamp     *bool    `yaml:"clamp,omitempty" toml:"clamp,omitempty"`
	Delay     Duration `yaml:"delay,omitempty" toml:"delay,omitempty"`
	Duration  Duration `yaml:"duration,omitempty" toml:"duration,omitempty"`
	Easing    string   `yaml:"easing,omitempty" toml:"easing,omitempty"`
}

type file struct {
	Presets map[string]Entry `yaml:"presets" toml:"presets"`
}

// Table is a parsed preset file.
type Table struct {
	entries map[string]Entry
}

// Load reads a preset file, choosing the format from its extension.
func Load(path string) (*Table, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f, format)
}

// Parse decodes a preset table from data.
func Parse(data []byte, format Format) (*Table, error) {
	return Decode(bytes.NewReader(data), format)
}

// Decode reads a preset table from r. Unknown fields are errors, and every
// entry is resolved once so a bad file fails here rather than on first use.
func Decode(r io.Reader, format Format) (*Table, error) {
	const op = "presets.Decode"
	var f file
	switch format {
	case YAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return nil, errors.Config(op, "parse yaml: %v", err)
		}
	case TOML:
		md, err := toml.NewDecoder(r).Decode(&f)
		if err != nil {
			return nil, errors.Config(op, "parse toml: %v", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Config(op, "unknown field %q", undecoded[0].String())
		}
	default:
		return nil, errors.Config(op, "unsupported format %v", format)
	}

	t := &Table{entries: f.Presets}
	if t.entries == nil {
		t.entries = map[string]Entry{}
	}
	for _, name := range t.Names() {
		if _, err := t.Config(name); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Names returns the preset names defined by the table in sorted order.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.entries))
	for name := range t.entries {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Entry returns the raw entry for name.
func (t *Table) Entry(name string) (Entry, bool) {
	e, ok := t.entries[name]
	return e, ok
}

// Config resolves name into a validated spring config. Names not defined
// by the table fall back to the registered animation presets.
func (t *Table) Config(name string) (animation.SpringConfig, error) {
	return t.resolve(name, nil)
}

func (t *Table) resolve(name string, seen []string) (animation.SpringConfig, error) {
	const op = "presets.Table.Config"
	if slices.Contains(seen, name) {
		return animation.SpringConfig{}, keyed(errors.Config(op, "extends cycle %s", strings.Join(append(seen, name), " -> ")), name)
	}
	e, ok := t.entries[name]
	if !ok {
		if cfg, ok := animation.Preset(name); ok {
			return cfg, nil
		}
		return animation.SpringConfig{}, keyed(errors.Config(op, "unknown preset %q", name), name)
	}

	cfg := animation.DefaultConfig
	if e.Extends != "" {
		base, err := t.resolve(e.Extends, append(seen, name))
		if err != nil {
			return animation.SpringConfig{}, err
		}
		cfg = base
	}
	if e.Tension != nil {
		cfg.Tension = *e.Tension
	}
	if e.Friction != nil {
		cfg.Friction = *e.Friction
	}
	if e.Mass != nil {
		cfg.Mass = *e.Mass
	}
	if e.Precision != nil {
		cfg.Precision = *e.Precision
	}
	if e.Clamp != nil {
		cfg.Clamp = *e.Clamp
	}
	if e.Delay != 0 {
		cfg.Delay = e.Delay.Std()
	}
	if e.Duration != 0 {
		cfg.Duration = e.Duration.Std()
	}
	if e.Easing != "" {
		easing, ok := animation.EasingByName(e.Easing)
		if !ok {
			return animation.SpringConfig{}, keyed(errors.Config(op, "unknown easing %q", e.Easing), name)
		}
		cfg.Easing = easing
	}
	if err := cfg.Validate(); err != nil {
		return animation.SpringConfig{}, keyed(err, name)
	}
	return cfg, nil
}

// Register adds every preset of the table to the animation preset
// registry, replacing presets with the same name.
func (t *Table) Register() error {
	var errs []error
	for _, name := range t.Names() {
		cfg, err := t.Config(name)
		if err == nil {
			err = animation.RegisterPreset(name, cfg)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Encode writes the table in format. Extends chains are kept as written.
func (t *Table) Encode(w io.Writer, format Format) error {
	f := file{Presets: t.entries}
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case TOML:
		return toml.NewEncoder(w).Encode(f)
	default:
		return errors.Config("presets.Table.Encode", "unsupported format %v", format)
	}
}

// Builtin returns a table holding the registered animation presets, for
// exporting them as a starting point.
func Builtin() *Table {
	t := &Table{entries: map[string]Entry{}}
	for _, name := range animation.PresetNames() {
		cfg, _ := animation.Preset(name)
		t.entries[name] = EntryOf(cfg)
	}
	return t
}

// EntryOf converts a config back into a file entry. Easing functions have
// no name and are dropped.
func EntryOf(cfg animation.SpringConfig) Entry {
	e := Entry{
		Tension:  &cfg.Tension,
		Friction: &cfg.Friction,
		Mass:     &cfg.Mass,
		Delay:    Duration(cfg.Delay),
		Duration: Duration(cfg.Duration),
	}
	if cfg.Precision != 0 {
		e.Precision = &cfg.Precision
	}
	if cfg.Clamp {
		e.Clamp = &cfg.Clamp
	}
	return e
}

func keyed(err error, name string) error {
	var me *errors.MotionError
	if errors.As(err, &me) && me.Key == "" {
		me.Key = name
	}
	return err
}

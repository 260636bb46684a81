package dataset

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"motifapi/internal/discovery"
	"motifapi/internal/motiflet"
)

var ErrUnknownPreset = errors.New("unknown preset")

// Preset is a named experiment: a dataset file plus the discovery to run on it.
type Preset struct {
	Name   string `yaml:"-"`
	File   string `yaml:"file"`
	Layout Layout `yaml:"layout"`

	discovery.Params `yaml:",inline"`
}

// Presets maps preset names to their definition.
type Presets map[string]Preset

type presetFile struct {
	Presets map[string]Preset `yaml:"presets"`
}

// LoadPresets reads a YAML preset file. Relative dataset paths are resolved against the
// directory of the preset file.
func LoadPresets(path string) (Presets, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read presets: %w", err)
	}

	var pf presetFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return nil, fmt.Errorf("decode presets %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	out := make(Presets, len(pf.Presets))
	for name, p := range pf.Presets {
		p.Name = name
		if p.File == "" {
			return nil, fmt.Errorf("preset %q: file is required", name)
		}
		if !filepath.IsAbs(p.File) {
			p.File = filepath.Join(dir, p.File)
		}
		if p.Layout, err = ParseLayout(string(p.Layout)); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("preset %q: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}

// Get returns the named preset.
func (ps Presets) Get(name string) (Preset, error) {
	p, ok := ps[name]
	if !ok {
		return Preset{}, fmt.Errorf("%q: %w", name, ErrUnknownPreset)
	}
	return p, nil
}

// Names returns the preset names in sorted order.
func (ps Presets) Names() []string {
	names := make([]string, 0, len(ps))
	for name := range ps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load parses the preset's dataset file.
func (p Preset) Load() (motiflet.Series, error) {
	f, err := os.Open(p.File)
	if err != nil {
		return motiflet.Series{}, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	s, err := Parse(f, p.Layout)
	if err != nil {
		return motiflet.Series{}, fmt.Errorf("parse %s: %w", p.File, err)
	}
	return s, nil
}

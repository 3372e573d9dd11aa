package recipe

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Names of the generic sections merged between a parent record and an
// output's own record.
var SectionNames = []string{"build", "package", "app", "extra", "test"}

// Identifies one buildable output within a recipe.
type Step struct {
	Name string `yaml:"name"`
}

// One source entry of a record.
//
// A source either fetches external material (url or path) or references
// another step of the same recipe, in which case the referencing output
// inherits that step's build and host requirements.
type Source struct {
	Step   string `yaml:"step,omitempty"`
	URL    string `yaml:"url,omitempty"`
	Path   string `yaml:"path,omitempty"`
	Folder string `yaml:"folder,omitempty"`
	SHA256 string `yaml:"sha256,omitempty"`
}

// A list of source entries that accepts either a single mapping or a
// sequence in YAML.
type SourceList []Source

func (l *SourceList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.MappingNode {
		var single Source
		if err := value.Decode(&single); err != nil {
			return err
		}
		*l = SourceList{single}
		return nil
	}

	var many []Source
	if err := value.Decode(&many); err != nil {
		return err
	}
	*l = SourceList(many)
	return nil
}

// An optional feature of an output.
//
// Whether the feature is active defaults to Default and may be overridden
// by the caller at construction time. Active features contribute extra
// requirements per environment.
type Feature struct {
	Name         string              `yaml:"name"`
	Default      bool                `yaml:"default"`
	Requirements map[string][]string `yaml:"requirements,omitempty"`
}

// The raw declarative record of one output.
//
// The generic sections are kept as maps so a parent record's keys can be
// overlaid without enumerating them. Typed access to well-known keys is
// left to the consumer.
type Record struct {
	Step         Step                `yaml:"step"`
	Package      map[string]any      `yaml:"package,omitempty"`
	Build        map[string]any      `yaml:"build,omitempty"`
	App          map[string]any      `yaml:"app,omitempty"`
	Extra        map[string]any      `yaml:"extra,omitempty"`
	Test         map[string]any      `yaml:"test,omitempty"`
	Files        []string            `yaml:"files,omitempty"`
	Source       SourceList          `yaml:"source,omitempty"`
	Requirements map[string][]string `yaml:"requirements,omitempty"`
	Features     []Feature           `yaml:"features,omitempty"`
}

// Returns the named generic section, which may be nil.
func (r *Record) Section(name string) map[string]any {
	if r == nil {
		return nil
	}
	switch name {
	case "build":
		return r.Build
	case "package":
		return r.Package
	case "app":
		return r.App
	case "extra":
		return r.Extra
	case "test":
		return r.Test
	}
	return nil
}

// Stores a generic section back onto the record.
func (r *Record) SetSection(name string, section map[string]any) {
	switch name {
	case "build":
		r.Build = section
	case "package":
		r.Package = section
	case "app":
		r.App = section
	case "extra":
		r.Extra = section
	case "test":
		r.Test = section
	}
}

// Returns a deep copy of the record.
//
// Section maps and requirement lists are copied recursively so a variant
// copy can rewrite its record without touching the template's.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	clone := &Record{
		Step:  r.Step,
		Files: append([]string(nil), r.Files...),
	}

	for _, name := range SectionNames {
		if sec := r.Section(name); sec != nil {
			clone.SetSection(name, cloneValue(sec).(map[string]any))
		}
	}

	if r.Source != nil {
		clone.Source = append(SourceList(nil), r.Source...)
	}

	if r.Requirements != nil {
		clone.Requirements = make(map[string][]string, len(r.Requirements))
		for env, specs := range r.Requirements {
			clone.Requirements[env] = append([]string(nil), specs...)
		}
	}

	for _, f := range r.Features {
		fc := Feature{Name: f.Name, Default: f.Default}
		if f.Requirements != nil {
			fc.Requirements = make(map[string][]string, len(f.Requirements))
			for env, specs := range f.Requirements {
				fc.Requirements[env] = append([]string(nil), specs...)
			}
		}
		clone.Features = append(clone.Features, fc)
	}

	return clone
}

// Recursively copies the YAML-shaped value graphs sections are made of.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

// A loaded recipe: an optional shared parent record and its outputs.
type Recipe struct {
	Parent  *Record
	Outputs []*Record
}

// The YAML shape of a recipe file.
//
// A file either declares a single record at the top level or a top-level
// parent record with an outputs list.
type recipeFile struct {
	Record  `yaml:",inline"`
	Outputs []*Record `yaml:"outputs,omitempty"`
}

// Decodes a recipe document.
//
// Single-record files yield one output and no parent. Files with an
// outputs list yield the top-level record as the shared parent. Every
// output must carry a step name.
func Decode(data []byte) (*Recipe, error) {
	var file recipeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse recipe: %w", err)
	}

	if len(file.Outputs) == 0 {
		if file.Record.Step.Name == "" {
			return nil, fmt.Errorf("recipe declares no outputs and no step name")
		}
		return &Recipe{Outputs: []*Record{&file.Record}}, nil
	}

	parent := file.Record
	for i, out := range file.Outputs {
		if out == nil || out.Step.Name == "" {
			return nil, fmt.Errorf("output %d is missing a step name", i+1)
		}
	}

	return &Recipe{Parent: &parent, Outputs: file.Outputs}, nil
}

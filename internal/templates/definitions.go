package templates

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// KeyDefinition is one entry of the `keys:` section of a definitions
// file.
type KeyDefinition struct {
	Type       string `yaml:"type"`
	Alias      string `yaml:"alias"`
	Default    any    `yaml:"default"`
	Choices    []any  `yaml:"choices"`
	Exclusions []any  `yaml:"exclusions"`
	FilterBy   string `yaml:"filter_by"`
	FormatSpec string `yaml:"format_spec"`
	EntityType string `yaml:"entity_type"`
	FieldName  string `yaml:"field_name"`
}

// PathDefinition is one entry of the `paths:` section. A bare scalar is
// shorthand for a definition bound to the primary root.
type PathDefinition struct {
	Definition string `yaml:"definition"`
	RootName   string `yaml:"root_name"`
}

// UnmarshalYAML accepts either the scalar shorthand or the full mapping
// form.
func (p *PathDefinition) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		p.Definition = value.Value
		return nil
	}
	type plain PathDefinition
	var aux plain
	if err := value.Decode(&aux); err != nil {
		return err
	}
	*p = PathDefinition(aux)
	return nil
}

// DefinitionsFile mirrors the on-disk YAML shape: keys, path templates,
// and string templates.
type DefinitionsFile struct {
	Keys    map[string]KeyDefinition  `yaml:"keys"`
	Paths   map[string]PathDefinition `yaml:"paths"`
	Strings map[string]string         `yaml:"strings"`
}

// DefaultRootName is the root a path definition binds to when it names
// none.
const DefaultRootName = "primary"

// MakeKeys constructs the shared Key objects from the declarative keys
// section. The mapping is keyed by placeholder name; an alias renames
// the key itself without changing the placeholder.
func MakeKeys(defs map[string]KeyDefinition) (map[string]Key, error) {
	keys := make(map[string]Key, len(defs))
	for placeholder, def := range defs {
		name := placeholder
		if def.Alias != "" {
			name = def.Alias
		}
		spec := KeySpec{
			Default:    def.Default,
			Choices:    def.Choices,
			Exclusions: def.Exclusions,
			FilterBy:   def.FilterBy,
			FormatSpec: def.FormatSpec,
			EntityType: def.EntityType,
			FieldName:  def.FieldName,
		}
		var (
			key Key
			err error
		)
		switch def.Type {
		case "", string(KeyTypeString):
			key, err = NewStringKey(name, spec)
		case string(KeyTypeInt):
			key, err = NewIntegerKey(name, spec)
		case string(KeyTypeSequence):
			key, err = NewSequenceKey(name, spec)
		default:
			err = fmt.Errorf("%w: key %q has unknown type %q", ErrDefinition, placeholder, def.Type)
		}
		if err != nil {
			return nil, err
		}
		keys[placeholder] = key
	}
	return keys, nil
}

// LoadDefinitions reads a YAML definitions file and builds the template
// set. roots maps root names (as referenced by root_name) to their
// per-platform storage paths.
func LoadDefinitions(path string, roots map[string]map[string]string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read definitions file: %w", err)
	}
	set, err := ParseDefinitions(data, roots)
	if err != nil {
		return nil, fmt.Errorf("definitions file %s: %w", path, err)
	}
	return set, nil
}

// ParseDefinitions builds the template set from raw YAML.
func ParseDefinitions(data []byte, roots map[string]map[string]string) (*Set, error) {
	var file DefinitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDefinition, err)
	}

	keys, err := MakeKeys(file.Keys)
	if err != nil {
		return nil, err
	}

	set := &Set{
		keys:  keys,
		paths: make(map[string]*Template, len(file.Paths)),
		strs:  make(map[string]*Template, len(file.Strings)),
	}
	for name, def := range file.Paths {
		if def.Definition == "" {
			return nil, fmt.Errorf("%w: path template %q has an empty definition", ErrDefinition, name)
		}
		rootName := def.RootName
		if rootName == "" {
			rootName = DefaultRootName
		}
		rootPaths, ok := roots[rootName]
		if !ok {
			return nil, fmt.Errorf("%w: path template %q references unknown root %q", ErrDefinition, name, rootName)
		}
		t, err := NewPathTemplate(name, def.Definition, keys, rootPaths)
		if err != nil {
			return nil, err
		}
		t.rootName = rootName
		set.paths[name] = t
	}
	for name, definition := range file.Strings {
		t, err := NewStringTemplate(name, definition, keys)
		if err != nil {
			return nil, err
		}
		set.strs[name] = t
	}
	set.finalize()
	return set, nil
}

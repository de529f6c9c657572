package vars

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// File is a parsed variables file.
type File struct {
	Path string
	// Service is the optional target service id declared in the file.
	Service string
	Vars    *Set
}

// LoadFile reads a variables file, choosing the format from its extension:
// .toml, .yaml/.yml, or dotenv for anything else.
//
// TOML and YAML files look like:
//
//	service = "srv-123"
//	[vars]
//	NODE_ENV = "production"
//
// Declaration order is kept for TOML and YAML. Dotenv files carry no usable
// order and are sorted by key.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading variables file: %w", err)
	}
	var f *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		f, err = ParseTOML(data)
	case ".yaml", ".yml":
		f, err = ParseYAML(data)
	default:
		f, err = ParseDotenv(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	f.Path = path
	if err := f.Vars.Validate(); err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return f, nil
}

type tomlDoc struct {
	Service string         `toml:"service"`
	Vars    map[string]any `toml:"vars"`
}

// ParseTOML parses a TOML variables document.
func ParseTOML(data []byte) (*File, error) {
	var doc tomlDoc
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys: %v", undecoded)
	}
	f := &File{Service: doc.Service, Vars: &Set{}}
	for _, key := range md.Keys() {
		if len(key) != 2 || key[0] != "vars" {
			continue
		}
		name := key[1]
		value, err := scalarString(doc.Vars[name])
		if err != nil {
			return nil, fmt.Errorf("vars.%s: %w", name, err)
		}
		f.Vars.Put(name, value)
	}
	return f, nil
}

func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case int64, float64, bool:
		return fmt.Sprint(t), nil
	case time.Time:
		return t.Format(time.RFC3339), nil
	default:
		return "", fmt.Errorf("value must be a scalar, got %T", v)
	}
}

// ParseYAML parses a YAML variables document.
func ParseYAML(data []byte) (*File, error) {
	f := &File{Vars: &Set{}}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 {
		return f, nil
	}
	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: document must be a mapping", doc.Line)
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, val := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "service":
			if val.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: service must be a string", val.Line)
			}
			f.Service = val.Value
		case "vars":
			if err := putYAMLVars(f.Vars, val); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("line %d: unknown key %q", key.Line, key.Value)
		}
	}
	return f, nil
}

func putYAMLVars(s *Set, node *yaml.Node) error {
	if node.Tag == "!!null" {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: vars must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: vars.%s must be a scalar", val.Line, key.Value)
		}
		value := val.Value
		if val.Tag == "!!null" {
			value = ""
		}
		s.Put(key.Value, value)
	}
	return nil
}

// ParseDotenv parses KEY=VALUE lines in dotenv syntax.
func ParseDotenv(data []byte) (*File, error) {
	m, err := godotenv.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	f := &File{Vars: &Set{}}
	for _, k := range keys {
		f.Vars.Put(k, m[k])
	}
	return f, nil
}

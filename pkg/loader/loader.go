// Package loader provides utilities to load and register models from YAML
// definition files.
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/marshallshelly/pebble-mysql/pkg/registry"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// ModelRegistrar is an interface for registering model schemas.
type ModelRegistrar interface {
	Register(s *schema.Schema) error
}

// Document is the top-level shape of a definition file. A file may hold
// several YAML documents, each with its own models list.
type Document struct {
	Models []ModelDef `yaml:"models"`
}

// ModelDef defines one model. Fields keep their file order.
type ModelDef struct {
	Name   string     `yaml:"name"`
	Fields []FieldDef `yaml:"fields"`
}

// FieldDef defines one field. Target, Kind and Weak apply to relations,
// Element to lists.
type FieldDef struct {
	Name         string   `yaml:"name"`
	Type         string   `yaml:"type"`
	Primary      bool     `yaml:"primary"`
	Required     bool     `yaml:"required"`
	Unique       bool     `yaml:"unique"`
	Multilingual bool     `yaml:"multilingual"`
	Default      any      `yaml:"default"`
	MaxLength    int      `yaml:"maxLength"`
	Max          *float64 `yaml:"max"`

	Target  string `yaml:"target"`
	Kind    string `yaml:"kind"`
	Weak    bool   `yaml:"weak"`
	Element string `yaml:"element"`
}

var extensions = []string{".yaml", ".yml"}

// Loader reads definition files from a filesystem.
type Loader struct {
	fs afero.Fs
}

// New creates a loader over fs. A nil fs reads the OS filesystem.
func New(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs}
}

// LoadCatalog loads every model under path into a new catalog and checks
// that all relations resolve.
func (l *Loader) LoadCatalog(path string) (*registry.Catalog, error) {
	cat, err := registry.NewCatalog()
	if err != nil {
		return nil, err
	}
	if _, err := l.LoadModelsFromPath(path, cat); err != nil {
		return nil, err
	}
	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return cat, nil
}

// LoadModelsFromPath reads a definition file, or every .yaml and .yml file
// below a directory, and registers the models it defines.
// Files are read in lexical order.
func (l *Loader) LoadModelsFromPath(path string, registrar ModelRegistrar) (int, error) {
	info, err := l.fs.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("failed to stat path: %w", err)
	}

	var filesToParse []string
	if info.IsDir() {
		err := afero.Walk(l.fs, path, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() && isDefinition(p) {
				filesToParse = append(filesToParse, p)
			}
			return nil
		})
		if err != nil {
			return 0, fmt.Errorf("failed to walk directory: %w", err)
		}
	} else {
		if !isDefinition(path) {
			return 0, fmt.Errorf("file must have a .yaml or .yml extension")
		}
		filesToParse = append(filesToParse, path)
	}

	if len(filesToParse) == 0 {
		return 0, fmt.Errorf("no model definitions found in %s", path)
	}
	slices.Sort(filesToParse)

	modelsRegistered := 0
	for _, file := range filesToParse {
		count, err := l.loadModelsFromFile(file, registrar)
		modelsRegistered += count
		if err != nil {
			return modelsRegistered, fmt.Errorf("failed to load models from %s: %w", file, err)
		}
	}
	return modelsRegistered, nil
}

func (l *Loader) loadModelsFromFile(filename string, registrar ModelRegistrar) (int, error) {
	data, err := afero.ReadFile(l.fs, filename)
	if err != nil {
		return 0, fmt.Errorf("failed to read file: %w", err)
	}

	schemas, err := Parse(data)
	if err != nil {
		return 0, err
	}

	modelsRegistered := 0
	for _, s := range schemas {
		if err := registrar.Register(s); err != nil {
			return modelsRegistered, fmt.Errorf("failed to register %s: %w", s.Name(), err)
		}
		modelsRegistered++
	}
	return modelsRegistered, nil
}

func isDefinition(path string) bool {
	return slices.Contains(extensions, strings.ToLower(filepath.Ext(path)))
}

// Parse builds the schemas defined in data. Unknown keys are rejected.
func Parse(data []byte) ([]*schema.Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var schemas []*schema.Schema
	for {
		var doc Document
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to parse definitions: %w", err)
		}
		for _, def := range doc.Models {
			s, err := BuildSchema(def)
			if err != nil {
				return nil, err
			}
			schemas = append(schemas, s)
		}
	}
	return schemas, nil
}

// BuildSchema converts a model definition to a schema.
func BuildSchema(def ModelDef) (*schema.Schema, error) {
	fields := make([]*schema.Field, 0, len(def.Fields))
	for _, fd := range def.Fields {
		f, err := buildField(fd)
		if err != nil {
			return nil, fmt.Errorf("model %s: %w", def.Name, err)
		}
		fields = append(fields, f)
	}
	return schema.New(def.Name, fields...)
}

func buildField(def FieldDef) (*schema.Field, error) {
	t, err := schema.ParseFieldType(def.Type)
	if err != nil {
		return nil, fmt.Errorf("field %s: %w", def.Name, err)
	}

	var opts []schema.FieldOption
	if def.Primary {
		opts = append(opts, schema.PrimaryKey())
	}
	if def.Required {
		opts = append(opts, schema.Required())
	}
	if def.Unique {
		opts = append(opts, schema.Unique())
	}
	if def.Multilingual {
		opts = append(opts, schema.Multilingual())
	}
	if def.Default != nil {
		opts = append(opts, schema.Default(def.Default))
	}
	if def.MaxLength != 0 {
		opts = append(opts, schema.MaxLength(def.MaxLength))
	}
	if def.Max != nil {
		opts = append(opts, schema.Max(*def.Max))
	}

	switch t {
	case schema.Relation:
		if def.Kind == "" {
			return nil, fmt.Errorf("field %s: relation kind is required", def.Name)
		}
		kind, err := schema.ParseRelationKind(def.Kind)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", def.Name, err)
		}
		if def.Weak {
			opts = append(opts, schema.Weak())
		}
		return schema.NewRelation(def.Name, def.Target, kind, opts...), nil
	case schema.List:
		if def.Element == "" {
			return nil, fmt.Errorf("field %s: list element type is required", def.Name)
		}
		element, err := schema.ParseFieldType(def.Element)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", def.Name, err)
		}
		return schema.NewList(def.Name, element, opts...), nil
	default:
		if def.Target != "" || def.Kind != "" || def.Weak {
			return nil, fmt.Errorf("field %s: target, kind and weak only apply to relations", def.Name)
		}
		return schema.NewField(def.Name, t, opts...), nil
	}
}

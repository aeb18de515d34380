// Package schema defines the model catalog contract: fields, their types and
// relations, and the naming rules for satellite tables.
package schema

import (
	"fmt"
)

// DefaultPrimaryKey is the column synthesized when a model declares no primary field.
const DefaultPrimaryKey = "id"

// Schema is an immutable, ordered set of fields describing one model.
type Schema struct {
	name   string
	fields []*Field
	index  map[string]*Field
	pk     string
}

// New builds a Schema. Fields keep their declaration order. At most one field
// may be primary; when none is, an Integer "id" primary key is synthesized.
func New(name string, fields ...*Field) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema name is required")
	}

	s := &Schema{
		name:  name,
		index: make(map[string]*Field, len(fields)+1),
	}

	for _, f := range fields {
		if f == nil || f.Name == "" {
			return nil, fmt.Errorf("schema %s: field name is required", name)
		}
		if _, dup := s.index[f.Name]; dup {
			return nil, fmt.Errorf("schema %s: duplicate field %s", name, f.Name)
		}
		if err := ValidateField(f); err != nil {
			return nil, fmt.Errorf("schema %s: %w", name, err)
		}
		if f.Primary {
			if s.pk != "" {
				return nil, fmt.Errorf("schema %s: multiple primary keys (%s, %s)", name, s.pk, f.Name)
			}
			s.pk = f.Name
		}
		c := f.Clone()
		s.fields = append(s.fields, c)
		s.index[c.Name] = c
	}

	if s.pk == "" {
		if _, taken := s.index[DefaultPrimaryKey]; taken {
			return nil, fmt.Errorf("schema %s: field %q exists but is not primary", name, DefaultPrimaryKey)
		}
		id := &Field{Name: DefaultPrimaryKey, Type: Integer, Primary: true, Required: true}
		s.fields = append([]*Field{id}, s.fields...)
		s.index[DefaultPrimaryKey] = id
		s.pk = DefaultPrimaryKey
	}

	return s, nil
}

// MustNew is like New but panics on error. Intended for package-level model tables.
func MustNew(name string, fields ...*Field) *Schema {
	s, err := New(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the model name, which is also the primary table name.
func (s *Schema) Name() string { return s.name }

// PrimaryKey returns the name of the primary key field.
func (s *Schema) PrimaryKey() string { return s.pk }

// Fields returns the fields in declaration order.
func (s *Schema) Fields() []*Field {
	out := make([]*Field, len(s.fields))
	copy(out, s.fields)
	return out
}

// Field returns the named field, or nil.
func (s *Schema) Field(name string) *Field {
	return s.index[name]
}

// Has reports whether the schema defines the named field.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// ColumnFields returns the fields stored in the primary table, including
// OneToMany references.
func (s *Schema) ColumnFields() []*Field {
	return s.filter(func(f *Field) bool { return f.IsColumn() })
}

// ListFields returns the scalar-array fields.
func (s *Schema) ListFields() []*Field {
	return s.filter(func(f *Field) bool { return f.Type == List })
}

// RelationFields returns every Relation field regardless of kind.
func (s *Schema) RelationFields() []*Field {
	return s.filter(func(f *Field) bool { return f.Type == Relation })
}

// RelationsByKind returns the Relation fields of one kind.
func (s *Schema) RelationsByKind(kind RelationKind) []*Field {
	return s.filter(func(f *Field) bool { return f.IsRelation(kind) })
}

// MultilingualFields returns the column fields routed to the translation table.
func (s *Schema) MultilingualFields() []*Field {
	return s.filter(func(f *Field) bool { return f.Multilingual && !f.Primary && f.isStored() })
}

func (s *Schema) filter(keep func(*Field) bool) []*Field {
	var out []*Field
	for _, f := range s.fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

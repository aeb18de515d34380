package schema

import (
	"fmt"
	"strings"
)

// FieldType is the declared type of a model field.
type FieldType int

const (
	String FieldType = iota + 1
	Integer
	Float
	Number
	Boolean
	Enum
	Text
	Object
	Timestamp
	Relation
	List
	Password
	File
	Email
	Tel
	URL
)

var fieldTypeNames = map[FieldType]string{
	String:    "string",
	Integer:   "integer",
	Float:     "float",
	Number:    "number",
	Boolean:   "boolean",
	Enum:      "enum",
	Text:      "text",
	Object:    "object",
	Timestamp: "timestamp",
	Relation:  "relation",
	List:      "list",
	Password:  "password",
	File:      "file",
	Email:     "email",
	Tel:       "tel",
	URL:       "url",
}

// String returns the lower-case name of the type.
func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// ParseFieldType maps a type name (case-insensitive) to a FieldType.
func ParseFieldType(name string) (FieldType, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for t, n := range fieldTypeNames {
		if n == lower {
			return t, nil
		}
	}
	return 0, fmt.Errorf("unknown field type %q", name)
}

// IsStringLike reports whether values of this type are stored as VARCHAR.
func (t FieldType) IsStringLike() bool {
	switch t {
	case String, Password, File, Email, Tel, URL:
		return true
	}
	return false
}

// IsNumeric reports whether the zero value of this type is 0 rather than ''.
func (t FieldType) IsNumeric() bool {
	switch t {
	case Integer, Float, Number, Timestamp, Enum, Relation:
		return true
	}
	return false
}

// IsScalar reports whether the type may be used as a list element.
func (t FieldType) IsScalar() bool {
	switch t {
	case Relation, List, Object:
		return false
	}
	_, ok := fieldTypeNames[t]
	return ok
}

// RelationKind describes where the key of a relation is stored.
type RelationKind int

const (
	// OneToMany stores the target id in a column of the owner table.
	// It is a to-one reference despite the name.
	OneToMany RelationKind = iota + 1
	// ManyToMany links owner and target through a generated join table.
	ManyToMany
	// Reverse is the inverse side of a relation owned by the target model.
	Reverse
)

// String returns the camel-case name of the kind.
func (k RelationKind) String() string {
	switch k {
	case OneToMany:
		return "oneToMany"
	case ManyToMany:
		return "manyToMany"
	case Reverse:
		return "reverse"
	}
	return fmt.Sprintf("RelationKind(%d)", int(k))
}

// ParseRelationKind maps a kind name (case-insensitive) to a RelationKind.
func ParseRelationKind(name string) (RelationKind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "onetomany", "one2many":
		return OneToMany, nil
	case "manytomany", "many2many":
		return ManyToMany, nil
	case "reverse":
		return Reverse, nil
	}
	return 0, fmt.Errorf("unknown relation kind %q", name)
}

// RelationInfo holds the relation-specific properties of a Relation field.
type RelationInfo struct {
	Target string
	Kind   RelationKind
	// Weak relations own the lifecycle of the related rows.
	Weak bool
}

// Field describes one model field.
type Field struct {
	Name         string
	Type         FieldType
	Primary      bool
	Required     bool
	Unique       bool
	Multilingual bool
	// Default is nil when the field has no default.
	Default   any
	MaxLength int
	Max       float64

	Relation *RelationInfo
	// Element is the scalar type of a List field.
	Element FieldType
}

// IsRelation reports whether the field is a Relation of the given kind.
func (f *Field) IsRelation(kind RelationKind) bool {
	return f.Type == Relation && f.Relation != nil && f.Relation.Kind == kind
}

// IsColumn reports whether the field is stored as a column of the primary
// table. Multilingual fields live in the translation table instead.
func (f *Field) IsColumn() bool {
	if f.Multilingual && !f.Primary {
		return false
	}
	return f.isStored()
}

// isStored reports whether the field maps to a single column in a table of
// its own model, primary or translation.
func (f *Field) isStored() bool {
	switch f.Type {
	case List:
		return false
	case Relation:
		return f.IsRelation(OneToMany)
	default:
		return true
	}
}

// Clone returns a deep copy of the field.
func (f *Field) Clone() *Field {
	c := *f
	if f.Relation != nil {
		rel := *f.Relation
		c.Relation = &rel
	}
	return &c
}

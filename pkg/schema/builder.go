package schema

// FieldOption configures a Field built by NewField and friends.
type FieldOption func(*Field)

// NewField creates a field of the given type.
func NewField(name string, t FieldType, opts ...FieldOption) *Field {
	f := &Field{Name: name, Type: t}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewRelation creates a Relation field pointing at target.
func NewRelation(name, target string, kind RelationKind, opts ...FieldOption) *Field {
	f := NewField(name, Relation, opts...)
	weak := f.Relation != nil && f.Relation.Weak
	f.Relation = &RelationInfo{Target: target, Kind: kind, Weak: weak}
	return f
}

// NewList creates a List field of the given element type.
func NewList(name string, element FieldType, opts ...FieldOption) *Field {
	f := NewField(name, List, opts...)
	f.Element = element
	return f
}

// PrimaryKey marks the field as the primary key.
func PrimaryKey() FieldOption {
	return func(f *Field) { f.Primary = true }
}

// Required marks the field as NOT NULL.
func Required() FieldOption {
	return func(f *Field) { f.Required = true }
}

// Unique adds a UNIQUE constraint.
func Unique() FieldOption {
	return func(f *Field) { f.Unique = true }
}

// Multilingual routes the field to the translation table.
func Multilingual() FieldOption {
	return func(f *Field) { f.Multilingual = true }
}

// Default sets the column default.
func Default(v any) FieldOption {
	return func(f *Field) { f.Default = v }
}

// MaxLength sets the VARCHAR length of string-like fields.
func MaxLength(n int) FieldOption {
	return func(f *Field) { f.MaxLength = n }
}

// Max sets the upper bound used to size numeric columns.
func Max(n float64) FieldOption {
	return func(f *Field) { f.Max = n }
}

// Weak marks a relation as owning the lifecycle of its targets.
func Weak() FieldOption {
	return func(f *Field) {
		if f.Relation == nil {
			f.Relation = &RelationInfo{}
		}
		f.Relation.Weak = true
	}
}

package schema

// RelationTarget returns the target model of a Relation field, or "".
func (f *Field) RelationTarget() string {
	if f.Type != Relation || f.Relation == nil {
		return ""
	}
	return f.Relation.Target
}

// IsWeak reports whether the field is a weak relation.
func (f *Field) IsWeak() bool {
	return f.Type == Relation && f.Relation != nil && f.Relation.Weak
}

// OwningFieldFor returns the first field of s that points at model and owns
// the key (OneToMany or ManyToMany). It is the other side of a Reverse relation
// declared on model.
func (s *Schema) OwningFieldFor(model string) *Field {
	for _, f := range s.fields {
		if f.RelationTarget() != model {
			continue
		}
		if f.IsRelation(OneToMany) || f.IsRelation(ManyToMany) {
			return f
		}
	}
	return nil
}

package query

// Helper functions for building conditions

// Col names a field used as the right-hand side of a comparison.
type Col string

// And joins conditions with AND.
func And(children ...*Condition) *Condition {
	return NewCondition(OpAnd).Append(children...)
}

// Or joins conditions with OR.
func Or(children ...*Condition) *Condition {
	return NewCondition(OpOr).Append(children...)
}

// Not negates a condition.
func Not(c *Condition) *Condition {
	return c.Not()
}

// Eq creates an equality condition.
func Eq(field string, value any) *Condition {
	return NewCondition(OpEqual).Compare(field, value)
}

// NotEq creates a not-equal condition.
func NotEq(field string, value any) *Condition {
	return NewCondition(OpNotEqual).Compare(field, value)
}

// Gt creates a greater-than condition.
func Gt(field string, value any) *Condition {
	return NewCondition(OpGreaterThan).Compare(field, value)
}

// Gte creates a greater-than-or-equal condition.
func Gte(field string, value any) *Condition {
	return NewCondition(OpGreaterThanOrEqual).Compare(field, value)
}

// Lt creates a less-than condition.
func Lt(field string, value any) *Condition {
	return NewCondition(OpLessThan).Compare(field, value)
}

// Lte creates a less-than-or-equal condition.
func Lte(field string, value any) *Condition {
	return NewCondition(OpLessThanOrEqual).Compare(field, value)
}

// Like creates a LIKE condition.
func Like(field, pattern string) *Condition {
	return NewCondition(OpLike).Compare(field, pattern)
}

// NotLike creates a NOT LIKE condition.
func NotLike(field, pattern string) *Condition {
	return NewCondition(OpNotLike).Compare(field, pattern)
}

// Regex creates a REGEXP condition.
func Regex(field, pattern string) *Condition {
	return NewCondition(OpRegex).Compare(field, pattern)
}

// NotRegex creates a NOT REGEXP condition.
func NotRegex(field, pattern string) *Condition {
	return NewCondition(OpNotRegex).Compare(field, pattern)
}

// In creates an OR of equalities, one per value. With no values it returns
// an empty connector, which compiles to no constraint.
func In[T any](field string, values ...T) *Condition {
	c := NewCondition(OpOr)
	for _, v := range values {
		c.Append(Eq(field, v))
	}
	return c
}

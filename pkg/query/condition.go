// Package query defines the declarative descriptors consumed by the compilers:
// condition trees, queries, joins and find options.
package query

import "fmt"

// Operator is either a comparison applied by a leaf or a connector joining children.
type Operator int

const (
	// OpEqual compares with =.
	OpEqual Operator = iota + 1
	// OpNotEqual compares with <>.
	OpNotEqual
	// OpGreaterThan compares with >.
	OpGreaterThan
	// OpGreaterThanOrEqual compares with >=.
	OpGreaterThanOrEqual
	// OpLessThan compares with <.
	OpLessThan
	// OpLessThanOrEqual compares with <=.
	OpLessThanOrEqual
	// OpLike matches with LIKE.
	OpLike
	// OpNotLike matches with NOT LIKE.
	OpNotLike
	// OpRegex matches with REGEXP.
	OpRegex
	// OpNotRegex matches with NOT REGEXP.
	OpNotRegex
	// OpAnd joins children with AND.
	OpAnd
	// OpOr joins children with OR.
	OpOr
)

// IsConnector reports whether the operator joins child conditions.
func (o Operator) IsConnector() bool {
	return o == OpAnd || o == OpOr
}

func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "EqualTo"
	case OpNotEqual:
		return "NotEqualTo"
	case OpGreaterThan:
		return "GreaterThan"
	case OpGreaterThanOrEqual:
		return "GreaterThanOrEqual"
	case OpLessThan:
		return "LessThan"
	case OpLessThanOrEqual:
		return "LessThanOrEqual"
	case OpLike:
		return "Like"
	case OpNotLike:
		return "NotLike"
	case OpRegex:
		return "Regex"
	case OpNotRegex:
		return "NotRegex"
	case OpAnd:
		return "And"
	case OpOr:
		return "Or"
	}
	return fmt.Sprintf("Operator(%d)", int(o))
}

// Condition is a node of a boolean expression tree. Leaves compare Field with
// Value; connector nodes (And, Or) hold Children. Any node may be negated.
type Condition struct {
	Operator Operator
	Field    string
	Value    any
	// FieldValue marks Value as the name of another field rather than a literal.
	FieldValue bool
	Negate     bool
	// Model overrides the model the subtree is compiled against.
	Model    string
	Children []*Condition
}

// NewCondition creates an empty node with the given operator.
func NewCondition(op Operator) *Condition {
	return &Condition{Operator: op}
}

// Compare turns the node into a leaf comparing field with value.
// If value is a Col, it is treated as a field reference.
func (c *Condition) Compare(field string, value any) *Condition {
	c.Field = field
	if col, ok := value.(Col); ok {
		c.Value = string(col)
		c.FieldValue = true
		return c
	}
	c.Value = value
	return c
}

// Append adds children to a connector node.
func (c *Condition) Append(children ...*Condition) *Condition {
	for _, child := range children {
		if child != nil {
			c.Children = append(c.Children, child)
		}
	}
	return c
}

// Not toggles negation of the node.
func (c *Condition) Not() *Condition {
	c.Negate = !c.Negate
	return c
}

// On sets the model the subtree is compiled against.
func (c *Condition) On(model string) *Condition {
	c.Model = model
	return c
}

// IsConnector reports whether the node joins children.
func (c *Condition) IsConnector() bool {
	return c.Operator.IsConnector()
}

// Walk calls fn for every node in depth-first order.
func (c *Condition) Walk(fn func(*Condition)) {
	if c == nil {
		return
	}
	fn(c)
	for _, child := range c.Children {
		child.Walk(fn)
	}
}

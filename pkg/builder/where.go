package builder

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/pebble-mysql/pkg/query"
)

// Condition compiles a condition tree against model into a SQL predicate
// without the WHERE keyword. Leaves naming fields unknown to the model
// compile to "", as do connectors whose children all compile to "".
func (c *Compiler) Condition(model string, cond *query.Condition) (string, error) {
	return c.condition(model, model, cond)
}

// condition compiles cond. alias is the table reference emitted for model's
// columns; it differs from model inside joins.
func (c *Compiler) condition(model, alias string, cond *query.Condition) (string, error) {
	if cond == nil {
		return "", nil
	}
	if cond.Model != "" && cond.Model != model {
		model, alias = cond.Model, cond.Model
	}

	var sql string
	var err error
	if cond.IsConnector() {
		sql, err = c.connector(model, alias, cond)
	} else {
		sql, err = c.leaf(model, alias, cond)
	}
	if err != nil || sql == "" {
		return "", err
	}

	if cond.Negate {
		sql = "NOT (" + sql + ")"
	}
	return sql, nil
}

func (c *Compiler) connector(model, alias string, cond *query.Condition) (string, error) {
	keyword := " AND "
	if cond.Operator == query.OpOr {
		keyword = " OR "
	}

	parts := make([]string, 0, len(cond.Children))
	for _, child := range cond.Children {
		sql, err := c.condition(model, alias, child)
		if err != nil {
			return "", err
		}
		if sql != "" {
			parts = append(parts, sql)
		}
	}

	if len(parts) == 0 {
		return "", nil
	}
	return "(" + strings.Join(parts, keyword) + ")", nil
}

func (c *Compiler) leaf(model, alias string, cond *query.Condition) (string, error) {
	s, err := c.catalog.Get(model)
	if err != nil {
		return "", err
	}

	field := s.Field(cond.Field)
	if field == nil || !field.IsColumn() {
		c.logger.Debug("dropping condition on unknown field", "model", model, "field", cond.Field)
		return "", nil
	}

	op, err := operatorSQL(cond.Operator)
	if err != nil {
		return "", err
	}

	var value string
	if cond.FieldValue {
		ref, _ := cond.Value.(string)
		if s.Has(ref) {
			value = Qualified(alias, ref)
		} else {
			value = ref
		}
	} else {
		value = Escape(cond.Value)
	}

	return fmt.Sprintf("(%s %s %s)", Qualified(alias, cond.Field), op, value), nil
}

// operatorSQL maps a comparison operator to its SQL keyword.
func operatorSQL(op query.Operator) (string, error) {
	switch op {
	case query.OpEqual:
		return "=", nil
	case query.OpNotEqual:
		return "<>", nil
	case query.OpGreaterThan:
		return ">", nil
	case query.OpGreaterThanOrEqual:
		return ">=", nil
	case query.OpLessThan:
		return "<", nil
	case query.OpLessThanOrEqual:
		return "<=", nil
	case query.OpLike:
		return "LIKE", nil
	case query.OpNotLike:
		return "NOT LIKE", nil
	case query.OpRegex:
		return "REGEXP", nil
	case query.OpNotRegex:
		return "NOT REGEXP", nil
	case query.OpAnd, query.OpOr:
		return "", fmt.Errorf("connector %s used as a comparison", op)
	default:
		return "", fmt.Errorf("unknown operator: %s", op)
	}
}

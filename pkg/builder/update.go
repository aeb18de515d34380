package builder

import (
	"fmt"
	"strings"
)

// UpdateQuery builds an UPDATE with placeholder arguments.
type UpdateQuery struct {
	table     string
	sets      []string
	setArgs   []any
	where     []string
	whereArgs []any
}

// Update starts an UPDATE of table.
func Update(table string) *UpdateQuery {
	return &UpdateQuery{table: table}
}

// Set assigns a value to a column.
func (q *UpdateQuery) Set(column string, value any) *UpdateQuery {
	q.sets = append(q.sets, QuoteIdent(column)+" = ?")
	q.setArgs = append(q.setArgs, value)
	return q
}

// Increment adds delta to a numeric column.
func (q *UpdateQuery) Increment(column string, delta any) *UpdateQuery {
	col := QuoteIdent(column)
	q.sets = append(q.sets, col+" = "+col+" + (?)")
	q.setArgs = append(q.setArgs, delta)
	return q
}

// Where adds a predicate; multiple predicates are ANDed.
func (q *UpdateQuery) Where(predicate string, args ...any) *UpdateQuery {
	q.where = append(q.where, predicate)
	q.whereArgs = append(q.whereArgs, args...)
	return q
}

// Len returns the number of assignments.
func (q *UpdateQuery) Len() int { return len(q.sets) }

// ToSQL generates the UPDATE SQL and arguments.
func (q *UpdateQuery) ToSQL() (string, []any, error) {
	if len(q.sets) == 0 {
		return "", nil, fmt.Errorf("no columns to update")
	}
	if len(q.where) == 0 {
		return "", nil, fmt.Errorf("refusing to UPDATE %s without a WHERE clause", q.table)
	}

	var sql strings.Builder
	sql.WriteString("UPDATE ")
	sql.WriteString(QuoteIdent(q.table))
	sql.WriteString(" SET ")
	sql.WriteString(strings.Join(q.sets, ", "))
	sql.WriteString(" WHERE ")
	sql.WriteString(strings.Join(q.where, " AND "))

	args := make([]any, 0, len(q.setArgs)+len(q.whereArgs))
	args = append(args, q.setArgs...)
	args = append(args, q.whereArgs...)
	return sql.String(), args, nil
}

package builder

import (
	"fmt"
	"strings"
)

// DeleteQuery builds a DELETE with placeholder arguments.
type DeleteQuery struct {
	table string
	where []string
	args  []any
}

// Delete starts a DELETE from table.
func Delete(table string) *DeleteQuery {
	return &DeleteQuery{table: table}
}

// Where adds a predicate; multiple predicates are ANDed.
func (q *DeleteQuery) Where(predicate string, args ...any) *DeleteQuery {
	q.where = append(q.where, predicate)
	q.args = append(q.args, args...)
	return q
}

// ToSQL generates the DELETE SQL and arguments. A DELETE without a
// predicate is rejected.
func (q *DeleteQuery) ToSQL() (string, []any, error) {
	if len(q.where) == 0 {
		return "", nil, fmt.Errorf("refusing to DELETE from %s without a WHERE clause", q.table)
	}

	var sql strings.Builder
	sql.WriteString("DELETE FROM ")
	sql.WriteString(QuoteIdent(q.table))
	sql.WriteString(" WHERE ")
	sql.WriteString(strings.Join(q.where, " AND "))
	return sql.String(), q.args, nil
}

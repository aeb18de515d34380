package builder

import (
	"fmt"
	"strings"
)

// InsertQuery builds an INSERT with placeholder arguments.
type InsertQuery struct {
	table   string
	columns []string
	rows    [][]any
}

// Insert starts an INSERT into table.
func Insert(table string) *InsertQuery {
	return &InsertQuery{table: table}
}

// Columns sets the inserted columns.
func (q *InsertQuery) Columns(cols ...string) *InsertQuery {
	q.columns = cols
	return q
}

// Values appends one row. It must have one value per column.
func (q *InsertQuery) Values(values ...any) *InsertQuery {
	q.rows = append(q.rows, values)
	return q
}

// ToSQL generates a multi-row INSERT ... VALUES statement.
func (q *InsertQuery) ToSQL() (string, []any, error) {
	if len(q.rows) == 0 {
		return "", nil, fmt.Errorf("no values to insert")
	}

	var sql strings.Builder
	args := make([]any, 0, len(q.rows)*len(q.columns))

	sql.WriteString("INSERT INTO ")
	sql.WriteString(QuoteIdent(q.table))
	sql.WriteString(" (")
	sql.WriteString(quoteList(q.columns))
	sql.WriteString(") VALUES ")

	placeholders := "(" + Placeholders(len(q.columns)) + ")"
	valueClauses := make([]string, len(q.rows))
	for i, row := range q.rows {
		if len(row) != len(q.columns) {
			return "", nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), len(q.columns))
		}
		valueClauses[i] = placeholders
		args = append(args, row...)
	}
	sql.WriteString(strings.Join(valueClauses, ", "))

	return sql.String(), args, nil
}

// ToSetSQL generates the single-row INSERT ... SET form. With no columns it
// falls back to inserting a row of defaults.
func (q *InsertQuery) ToSetSQL() (string, []any, error) {
	if len(q.rows) != 1 {
		return "", nil, fmt.Errorf("SET form inserts exactly one row, got %d", len(q.rows))
	}
	row := q.rows[0]
	if len(row) != len(q.columns) {
		return "", nil, fmt.Errorf("row has %d values, want %d", len(row), len(q.columns))
	}

	if len(q.columns) == 0 {
		return "INSERT INTO " + QuoteIdent(q.table) + " () VALUES ()", nil, nil
	}

	return "INSERT INTO " + QuoteIdent(q.table) + " SET " + assignments(q.columns), row, nil
}

// Placeholders returns n comma-separated question marks.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}

// InList renders `column` IN (?,...) for n values.
func InList(column string, n int) string {
	return QuoteIdent(column) + " IN (" + Placeholders(n) + ")"
}

func quoteList(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = QuoteIdent(c)
	}
	return strings.Join(quoted, ",")
}

func assignments(cols []string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = QuoteIdent(c) + " = ?"
	}
	return strings.Join(parts, ", ")
}

package builder

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/pebble-mysql/pkg/query"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// Compiled holds the clauses of a compiled SELECT.
type Compiled struct {
	Model   string
	Fields  []string
	Joins   []string
	Where   string
	OrderBy []string
	Limit   string
}

// SQL renders the full SELECT statement.
func (q *Compiled) SQL() string {
	var sql strings.Builder

	sql.WriteString("SELECT ")
	if len(q.Fields) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(q.Fields, ", "))
	}

	sql.WriteString(" FROM ")
	sql.WriteString(QuoteIdent(q.Model))
	q.writeFilter(&sql)

	if len(q.OrderBy) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(q.OrderBy, ", "))
	}

	if q.Limit != "" {
		sql.WriteString(" ")
		sql.WriteString(q.Limit)
	}

	return sql.String()
}

// CountSQL renders a COUNT(*) over the same joins and condition.
func (q *Compiled) CountSQL() string {
	var sql strings.Builder
	sql.WriteString("SELECT COUNT(*) AS total FROM ")
	sql.WriteString(QuoteIdent(q.Model))
	q.writeFilter(&sql)
	return sql.String()
}

func (q *Compiled) writeFilter(sql *strings.Builder) {
	for _, join := range q.Joins {
		sql.WriteString(" ")
		sql.WriteString(join)
	}
	if q.Where != "" {
		sql.WriteString(" WHERE ")
		sql.WriteString(q.Where)
	}
}

// Query compiles a query descriptor.
func (c *Compiler) Query(q *query.Query) (*Compiled, error) {
	if q == nil {
		return nil, fmt.Errorf("query must not be nil")
	}
	return c.compile(q, q.Model, false)
}

// compile builds the clauses of q with columns qualified by alias. Nested
// compilations (joins) contribute their selected fields, or every column
// when none are selected.
func (c *Compiler) compile(q *query.Query, alias string, nested bool) (*Compiled, error) {
	s, err := c.catalog.Get(q.Model)
	if err != nil {
		return nil, err
	}

	out := &Compiled{Model: q.Model}

	if out.Fields, err = c.fields(s, q, alias, nested); err != nil {
		return nil, err
	}

	if !nested {
		subs, err := c.relationSelects(s, q, alias)
		if err != nil {
			return nil, err
		}
		out.Fields = append(out.Fields, subs...)
	}

	if out.Where, err = c.condition(q.Model, alias, q.Where); err != nil {
		return nil, fmt.Errorf("failed to build WHERE clause: %w", err)
	}

	out.OrderBy = orderBy(s, q.OrderBy, alias)

	if err := c.joins(s, q, alias, out); err != nil {
		return nil, err
	}

	if q.Limit > 0 && !nested {
		out.Limit = fmt.Sprintf("LIMIT %d,%d", q.ResolvedOffset(), q.Limit)
	}

	return out, nil
}

// fields builds the select list of plain columns and inline sub-queries.
func (c *Compiler) fields(s *schema.Schema, q *query.Query, alias string, nested bool) ([]string, error) {
	inlined := make(map[string]bool)
	for _, r := range q.Relations {
		if f := s.Field(r.Name); f != nil && f.IsRelation(schema.OneToMany) {
			inlined[r.Name] = true
		}
	}

	var fields []string
	if len(q.Fields) == 0 {
		for _, f := range s.ColumnFields() {
			if !inlined[f.Name] {
				fields = append(fields, column(alias, f.Name, nested))
			}
		}
		return fields, nil
	}

	seen := make(map[string]bool)
	for _, sel := range q.Fields {
		if sel.Sub != nil {
			sub, err := c.inlineSubquery(sel.Sub)
			if err != nil {
				return nil, err
			}
			fields = append(fields, sub)
			continue
		}

		f := s.Field(sel.Name)
		if f == nil || !f.IsColumn() || inlined[f.Name] || seen[f.Name] {
			continue
		}
		seen[f.Name] = true

		fields = append(fields, column(alias, f.Name, nested))
	}

	// Relation stitching and list loading match rows by primary key.
	if !nested && !seen[s.PrimaryKey()] && needsKey(s, q) {
		fields = append([]string{Qualified(alias, s.PrimaryKey())}, fields...)
	}

	return fields, nil
}

// column qualifies name by alias. Joined columns are aliased "Model.field"
// so they cannot collide with the outer model's columns.
func column(alias, name string, nested bool) string {
	col := Qualified(alias, name)
	if nested {
		col += " AS " + QuoteIdent(alias+"."+name)
	}
	return col
}

func needsKey(s *schema.Schema, q *query.Query) bool {
	for _, r := range q.Relations {
		if f := s.Field(r.Name); f != nil && f.Type == schema.Relation && !f.IsRelation(schema.OneToMany) {
			return true
		}
	}
	for _, f := range s.ListFields() {
		if q.HasField(f.Name) {
			return true
		}
	}
	return false
}

// relationSelects renders one correlated sub-select per requested OneToMany
// relation. Requests naming non-relation fields are rejected.
func (c *Compiler) relationSelects(s *schema.Schema, q *query.Query, alias string) ([]string, error) {
	var out []string
	for _, r := range q.Relations {
		f := s.Field(r.Name)
		if f == nil || f.Type != schema.Relation {
			return nil, fmt.Errorf("%s: unknown relation %q", s.Name(), r.Name)
		}

		switch f.Relation.Kind {
		case schema.OneToMany:
			sub, err := c.relationSubSelect(alias, f, r.Fields)
			if err != nil {
				return nil, err
			}
			out = append(out, sub)
		case schema.ManyToMany, schema.Reverse:
			// fetched by a secondary query
		default:
			return nil, fmt.Errorf("%s.%s: unknown relation kind %s", s.Name(), f.Name, f.Relation.Kind)
		}
	}
	return out, nil
}

func orderBy(s *schema.Schema, orders []query.Order, alias string) []string {
	var out []string
	for _, o := range orders {
		f := s.Field(o.Field)
		if f == nil || !f.IsColumn() {
			continue
		}
		out = append(out, Qualified(alias, o.Field)+" "+o.Direction.String())
	}
	return out
}

// joins renders q's joins and folds each joined query into out.
func (c *Compiler) joins(s *schema.Schema, q *query.Query, alias string, out *Compiled) error {
	for _, j := range q.Joins {
		f := s.Field(j.Field)
		if f == nil || !f.IsRelation(schema.OneToMany) {
			return fmt.Errorf("%s: cannot join on %q, not a OneToMany relation", s.Name(), j.Field)
		}

		target := f.Relation.Target
		joined := j.Query
		if joined == nil {
			joined = query.New(target)
		}
		if joined.Model == "" {
			joined.Model = target
		}
		if joined.Model != target {
			return fmt.Errorf("%s.%s: join query targets %s, want %s", s.Name(), j.Field, joined.Model, target)
		}

		keyword, err := joinKeyword(j.Type)
		if err != nil {
			return err
		}

		out.Joins = append(out.Joins, fmt.Sprintf("%s %s AS %s ON (%s = %s)",
			keyword,
			QuoteIdent(target),
			QuoteIdent(target),
			Qualified(alias, j.Field),
			Qualified(target, c.catalog.PrimaryKey(target)),
		))

		inner, err := c.compile(joined, target, true)
		if err != nil {
			return fmt.Errorf("failed to compile join %s: %w", j.Field, err)
		}

		out.Fields = append(out.Fields, inner.Fields...)
		switch {
		case inner.Where == "":
		case out.Where == "":
			out.Where = inner.Where
		default:
			out.Where = out.Where + " AND " + inner.Where
		}
		out.OrderBy = append(out.OrderBy, inner.OrderBy...)
		out.Joins = append(out.Joins, inner.Joins...)
	}
	return nil
}

func joinKeyword(t query.JoinType) (string, error) {
	switch t {
	case query.LeftJoin:
		return "LEFT JOIN", nil
	case query.FullJoin:
		return "FULL OUTER JOIN", nil
	case query.RightJoin:
		return "RIGHT JOIN", nil
	case query.InnerJoin:
		return "INNER JOIN", nil
	default:
		return "", fmt.Errorf("unknown join type %d", int(t))
	}
}

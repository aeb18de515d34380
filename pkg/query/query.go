package query

import "fmt"

// JoinType represents a type of JOIN.
type JoinType int

const (
	// LeftJoin represents a LEFT JOIN. It is the default.
	LeftJoin JoinType = iota
	// FullJoin represents a FULL OUTER JOIN.
	FullJoin
	// RightJoin represents a RIGHT JOIN.
	RightJoin
	// InnerJoin represents an INNER JOIN.
	InnerJoin
)

// Direction represents the sort direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Selection is one entry of an explicit field list: either a field name or
// a nested query rendered as an inline sub-select.
type Selection struct {
	Name string
	Sub  *Query
}

// Relation requests eager loading of a relation field. Fields optionally
// restricts the columns fetched from the related model.
type Relation struct {
	Name   string
	Fields []string
}

// Join joins the model referenced by Field and folds Query's fields,
// condition and ordering into the outer query.
type Join struct {
	Type  JoinType
	Field string
	Query *Query
}

// Order is one ORDER BY entry.
type Order struct {
	Field     string
	Direction Direction
}

// Query is a declarative description of what to select, filter, relate and
// paginate on one model.
type Query struct {
	Model     string
	Fields    []Selection
	Where     *Condition
	Relations []Relation
	Joins     []Join
	OrderBy   []Order
	Limit     int
	Offset    int
	Page      int
}

// New starts a query on model.
func New(model string) *Query {
	return &Query{Model: model}
}

// Select appends field names to the explicit field list.
func (q *Query) Select(fields ...string) *Query {
	for _, f := range fields {
		q.Fields = append(q.Fields, Selection{Name: f})
	}
	return q
}

// SelectSub appends a nested query to the explicit field list.
func (q *Query) SelectSub(sub *Query) *Query {
	q.Fields = append(q.Fields, Selection{Sub: sub})
	return q
}

// Filter sets the condition tree. Calling it again ANDs the new condition in.
func (q *Query) Filter(c *Condition) *Query {
	if c == nil {
		return q
	}
	if q.Where == nil {
		q.Where = c
		return q
	}
	q.Where = And(q.Where, c)
	return q
}

// WithRelation requests a relation, optionally restricted to fields.
func (q *Query) WithRelation(name string, fields ...string) *Query {
	q.Relations = append(q.Relations, Relation{Name: name, Fields: fields})
	return q
}

// Join adds a join on a relation field.
func (q *Query) Join(t JoinType, field string, joined *Query) *Query {
	q.Joins = append(q.Joins, Join{Type: t, Field: field, Query: joined})
	return q
}

// Order appends an ORDER BY entry.
func (q *Query) Order(field string, d Direction) *Query {
	q.OrderBy = append(q.OrderBy, Order{Field: field, Direction: d})
	return q
}

// SetLimit sets the page size. Zero means unbounded.
func (q *Query) SetLimit(n int) *Query {
	q.Limit = n
	return q
}

// SetOffset sets an explicit row offset.
func (q *Query) SetOffset(n int) *Query {
	q.Offset = n
	return q
}

// SetPage sets the 1-based page number.
func (q *Query) SetPage(n int) *Query {
	q.Page = n
	return q
}

// FieldNames returns the plain field names of the explicit field list.
func (q *Query) FieldNames() []string {
	var names []string
	for _, s := range q.Fields {
		if s.Sub == nil {
			names = append(names, s.Name)
		}
	}
	return names
}

// HasField reports whether the explicit field list names field. An empty
// list selects everything.
func (q *Query) HasField(field string) bool {
	if len(q.Fields) == 0 {
		return true
	}
	for _, s := range q.Fields {
		if s.Sub == nil && s.Name == field {
			return true
		}
	}
	return false
}

// Relation returns the requested relation by name.
func (q *Query) Relation(name string) (Relation, bool) {
	for _, r := range q.Relations {
		if r.Name == name {
			return r, true
		}
	}
	return Relation{}, false
}

// ResolvedOffset returns the row offset implied by Offset, Page and Limit.
func (q *Query) ResolvedOffset() int {
	if q.Offset > 0 {
		return q.Offset
	}
	if q.Page > 0 && q.Limit > 0 {
		return (q.Page - 1) * q.Limit
	}
	return 0
}

func (q *Query) String() string {
	return fmt.Sprintf("Query(%s fields=%d relations=%d joins=%d limit=%d offset=%d)",
		q.Model, len(q.Fields), len(q.Relations), len(q.Joins), q.Limit, q.ResolvedOffset())
}

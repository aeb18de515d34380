package driver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/marshallshelly/pebble-mysql/pkg/query"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// Find selects rows of model. The selector is an id, a map of field values,
// a *query.Condition, a *query.Query or nil for every row.
func (d *Driver) Find(ctx context.Context, model string, selector any, opts *query.Options, tx *runtime.Tx) (*QueryResult, error) {
	if q, ok := selector.(*query.Query); ok {
		return d.FindQuery(ctx, q, tx)
	}
	q, err := d.selectorQuery(model, selector)
	if err != nil {
		return nil, err
	}
	if opts != nil {
		opts.Apply(q)
	}
	if isID(selector) {
		q.SetLimit(1)
	}
	return d.FindQuery(ctx, q, tx)
}

// FindQuery runs a query descriptor: the primary SELECT, then relations
// and lists, then normalization.
func (d *Driver) FindQuery(ctx context.Context, q *query.Query, tx *runtime.Tx) (*QueryResult, error) {
	rq, err := d.querier(tx)
	if err != nil {
		return nil, err
	}
	items, err := d.find(ctx, rq, q)
	if err != nil {
		return nil, err
	}
	return &QueryResult{Items: items, Total: len(items)}, nil
}

func (d *Driver) find(ctx context.Context, rq runtime.Querier, q *query.Query) ([]Record, error) {
	s, err := d.schema(q.Model)
	if err != nil {
		return nil, err
	}

	compiled, err := d.compiler.Query(q)
	if err != nil {
		return nil, asQueryError(err)
	}

	rows, err := rq.Query(ctx, compiled.SQL())
	if err != nil {
		return nil, err
	}
	if err := d.normalize(s, q, rows); err != nil {
		return nil, asQueryError(err)
	}
	if err := d.resolveRelations(ctx, rq, s, q, rows); err != nil {
		return nil, asQueryError(err)
	}
	if err := d.fetchLists(ctx, rq, s, q, rows); err != nil {
		return nil, asQueryError(err)
	}
	return rows, nil
}

// findByID re-selects one row with its lists.
func (d *Driver) findByID(ctx context.Context, rq runtime.Querier, s *schema.Schema, id any) ([]Record, error) {
	q := query.New(s.Name()).Filter(query.Eq(s.PrimaryKey(), id)).SetLimit(1)
	return d.find(ctx, rq, q)
}

// Count counts the rows matching selector.
func (d *Driver) Count(ctx context.Context, model string, selector any, tx *runtime.Tx) (*CountResult, error) {
	rq, err := d.querier(tx)
	if err != nil {
		return nil, err
	}

	q, ok := selector.(*query.Query)
	if !ok {
		if q, err = d.selectorQuery(model, selector); err != nil {
			return nil, err
		}
	}

	compiled, err := d.compiler.Query(q)
	if err != nil {
		return nil, asQueryError(err)
	}
	rows, err := rq.Query(ctx, compiled.CountSQL())
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return &CountResult{}, nil
	}

	total, ok := toInt64(rows[0]["total"])
	if !ok {
		return nil, &runtime.QueryError{Err: fmt.Errorf("unexpected count value %v", rows[0]["total"])}
	}
	return &CountResult{Total: total}, nil
}

// selectorQuery turns a find or remove selector into a query on model.
func (d *Driver) selectorQuery(model string, selector any) (*query.Query, error) {
	s, err := d.schema(model)
	if err != nil {
		return nil, err
	}
	q := query.New(model)

	switch v := selector.(type) {
	case nil:
		return q, nil
	case *query.Condition:
		return q.Filter(v), nil
	case map[string]any:
		return q.Filter(valuesCondition(s, v)), nil
	}

	if id, ok := selectorID(selector); ok {
		return q.Filter(query.Eq(s.PrimaryKey(), id)), nil
	}
	return nil, runtime.WrongInputf("unsupported selector %T for %s", selector, model)
}

// valuesCondition ANDs an equality for every field of s present in values,
// in field order. Unknown keys and nil values are skipped.
func valuesCondition(s *schema.Schema, values map[string]any) *query.Condition {
	var leaves []*query.Condition
	for _, f := range s.Fields() {
		v, ok := values[f.Name]
		if !ok || v == nil || !f.IsColumn() {
			continue
		}
		leaves = append(leaves, query.Eq(f.Name, v))
	}
	if len(leaves) == 0 {
		return nil
	}
	return query.And(leaves...)
}

func isID(selector any) bool {
	_, ok := selectorID(selector)
	return ok
}

// selectorID accepts integers and numeric strings as ids.
func selectorID(selector any) (int64, bool) {
	switch v := selector.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64, json.Number, string:
		return toInt64(v)
	default:
		return 0, false
	}
}

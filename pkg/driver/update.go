package driver

import (
	"context"
	"fmt"

	"github.com/marshallshelly/pebble-mysql/pkg/builder"
	"github.com/marshallshelly/pebble-mysql/pkg/query"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// Update writes value to model. Without a condition value must carry its
// primary key and that one row is updated. With a condition every matching
// row is updated. The updated rows are returned re-selected.
func (d *Driver) Update(ctx context.Context, model string, value map[string]any, cond *query.Condition, tx *runtime.Tx) (*UpsertResult, error) {
	s, err := d.schema(model)
	if err != nil {
		return nil, err
	}

	id := value[s.PrimaryKey()]
	if cond == nil && id == nil {
		return nil, runtime.WrongInputf("update of %s needs a primary key or a condition", model)
	}
	if cond != nil {
		if err := d.requireFilter(s, cond, "update of"); err != nil {
			return nil, err
		}
	}

	var items []Record
	err = d.withTx(ctx, tx, func(tx *runtime.Tx) error {
		if cond == nil {
			if err := d.updateOne(ctx, tx, s, id, value); err != nil {
				return err
			}
			items, err = d.findByID(ctx, tx, s, id)
			return err
		}
		items, err = d.updateAll(ctx, tx, s, value, cond)
		return err
	})
	if err != nil {
		return nil, &runtime.UpdateError{Model: model, Err: err}
	}
	return &UpsertResult{Items: items}, nil
}

// updateOne updates the row id. OneToMany values join the SET, ManyToMany
// values replace the links and list values replace the rows.
func (d *Driver) updateOne(ctx context.Context, tx *runtime.Tx, s *schema.Schema, id any, value map[string]any) error {
	w, err := d.decompose(s, value, true)
	if err != nil {
		return err
	}

	upd := builder.Update(s.Name())
	for i, col := range w.columns {
		upd.Set(col, w.values[i])
	}

	for _, l := range w.links {
		switch l.field.Relation.Kind {
		case schema.OneToMany:
			relID, err := d.resolveOne(ctx, tx, l)
			if err != nil {
				return err
			}
			upd.Set(l.field.Name, relID)
		case schema.ManyToMany:
			if err := d.unlinkAll(ctx, tx, s, id, l.field); err != nil {
				return err
			}
			if err := d.attach(ctx, tx, s, id, l); err != nil {
				return err
			}
		case schema.Reverse:
		default:
			return fmt.Errorf("unknown relation kind %s", l.field.Relation.Kind)
		}
	}

	for _, lv := range w.lists {
		del := builder.Delete(schema.ListTableName(s.Name(), lv.field.Name)).
			Where(builder.QuoteIdent(schema.ListForeignKey)+" = ?", id)
		if _, err := run(ctx, tx, del); err != nil {
			return fmt.Errorf("list %s: %w", lv.field.Name, err)
		}
		if err := d.insertList(ctx, tx, s, id, lv); err != nil {
			return err
		}
	}

	if upd.Len() == 0 {
		return nil
	}
	upd.Where(builder.QuoteIdent(s.PrimaryKey())+" = ?", id)
	_, err = run(ctx, tx, upd)
	return err
}

// unlinkAll deletes every join row of the owner id for f.
func (d *Driver) unlinkAll(ctx context.Context, tx *runtime.Tx, s *schema.Schema, id any, f *schema.Field) error {
	ownerCol, _ := schema.JoinColumns(s.Name(), f.RelationTarget())
	del := builder.Delete(schema.JoinTableName(s.Name(), f.Name)).
		Where(builder.QuoteIdent(ownerCol)+" = ?", id)
	if _, err := run(ctx, tx, del); err != nil {
		return &runtime.RelationError{Field: f.Name, Message: "failed to unlink related models", Err: err}
	}
	return nil
}

// updateAll applies value to every row matching cond, one row at a time,
// and re-selects them.
func (d *Driver) updateAll(ctx context.Context, tx *runtime.Tx, s *schema.Schema, value map[string]any, cond *query.Condition) ([]Record, error) {
	ids, err := d.selectIDs(ctx, tx, s, cond)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Record{}, nil
	}

	for _, id := range ids {
		if err := d.updateOne(ctx, tx, s, id, value); err != nil {
			return nil, err
		}
	}
	return d.find(ctx, tx, query.New(s.Name()).Filter(query.In(s.PrimaryKey(), ids...)))
}

// selectIDs returns the primary keys of the rows of s matching cond. An
// empty condition matches every row.
func (d *Driver) selectIDs(ctx context.Context, rq runtime.Querier, s *schema.Schema, cond *query.Condition) ([]any, error) {
	where, err := d.compiler.Condition(s.Name(), cond)
	if err != nil {
		return nil, asQueryError(err)
	}

	pk := s.PrimaryKey()
	sql := fmt.Sprintf("SELECT %s FROM %s", builder.QuoteIdent(pk), builder.QuoteIdent(s.Name()))
	if where != "" {
		sql += " WHERE " + where
	}

	rows, err := rq.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	ids := make([]any, len(rows))
	for i, row := range rows {
		ids[i] = row[pk]
	}
	return ids, nil
}

// Increase adds delta to a numeric field of the row id and returns the row
// re-selected.
func (d *Driver) Increase(ctx context.Context, model string, id any, field string, delta any, tx *runtime.Tx) (*UpsertResult, error) {
	s, err := d.schema(model)
	if err != nil {
		return nil, err
	}

	f := s.Field(field)
	if f == nil {
		return nil, runtime.WrongInputf("%s has no field %q", model, field)
	}
	switch f.Type {
	case schema.Integer, schema.Float, schema.Number, schema.Timestamp:
	default:
		return nil, runtime.WrongInputf("%s.%s is %s, not numeric", model, field, f.Type)
	}
	if f.Primary {
		return nil, runtime.WrongInputf("%s.%s is the primary key", model, field)
	}
	if _, ok := toFloat64(delta); !ok {
		return nil, runtime.WrongInputf("increase of %s.%s: delta %v is not a number", model, field, delta)
	}
	key, ok := selectorID(id)
	if !ok {
		return nil, runtime.WrongInputf("increase of %s.%s: invalid id %v", model, field, id)
	}

	rq, err := d.querier(tx)
	if err != nil {
		return nil, err
	}
	upd := builder.Update(s.Name()).
		Increment(f.Name, delta).
		Where(builder.QuoteIdent(s.PrimaryKey())+" = ?", key)
	if _, err := run(ctx, rq, upd); err != nil {
		return nil, &runtime.UpdateError{Model: model, Err: err}
	}

	items, err := d.findByID(ctx, rq, s, key)
	if err != nil {
		return nil, &runtime.UpdateError{Model: model, Err: err}
	}
	return &UpsertResult{Items: items}, nil
}

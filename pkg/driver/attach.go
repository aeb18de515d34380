package driver

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/marshallshelly/pebble-mysql/pkg/builder"
	"github.com/marshallshelly/pebble-mysql/pkg/query"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// link is a relation value that has been validated and is ready to be
// written: ids of existing rows plus weak objects to insert first.
type link struct {
	field   *schema.Field
	target  *schema.Schema
	ids     []any
	objects []Record
}

// prepareLink validates v for relation f. Reverse relations yield nil.
func (d *Driver) prepareLink(f *schema.Field, v any) (*link, error) {
	target, err := d.target(f)
	if err != nil {
		return nil, err
	}
	l := &link{field: f, target: target}

	var values []any
	switch f.Relation.Kind {
	case schema.OneToMany:
		if v != nil {
			values = []any{v}
		}
	case schema.ManyToMany:
		values = toSlice(v)
	case schema.Reverse:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown relation kind %s", f.Relation.Kind)
	}

	for _, el := range values {
		if obj, ok := el.(map[string]any); ok && f.IsWeak() && obj[target.PrimaryKey()] == nil {
			l.objects = append(l.objects, obj)
			continue
		}
		id, ok := relationID(el, target.PrimaryKey())
		if !ok {
			return nil, invalidID(f)
		}
		l.ids = append(l.ids, id)
	}
	return l, nil
}

func invalidID(f *schema.Field) error {
	return &runtime.RelationError{Field: f.Name, Message: fmt.Sprintf("invalid %s related model id", f.Name)}
}

// relationID reads a positive id from a number, a numeric string or an
// object carrying the target's primary key.
func relationID(v any, pk string) (int64, bool) {
	if obj, ok := v.(map[string]any); ok {
		v = obj[pk]
	}
	if _, ok := v.(bool); ok {
		return 0, false
	}
	id, ok := toInt64(v)
	return id, ok && id > 0
}

// toSlice spreads slices and arrays into their elements. Any other value
// is a single element; nil is none.
func toSlice(v any) []any {
	if v == nil {
		return nil
	}
	if s, ok := v.([]any); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if _, isBytes := v.([]byte); isBytes {
			return []any{v}
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out
	default:
		return []any{v}
	}
}

// attach writes l for the owner row id of s.
func (d *Driver) attach(ctx context.Context, tx *runtime.Tx, s *schema.Schema, id any, l *link) error {
	f := l.field
	switch f.Relation.Kind {
	case schema.OneToMany:
		relID, err := d.resolveOne(ctx, tx, l)
		if err != nil {
			return err
		}
		upd := builder.Update(s.Name()).
			Set(f.Name, relID).
			Where(builder.QuoteIdent(s.PrimaryKey())+" = ?", id)
		if _, err := run(ctx, tx, upd); err != nil {
			return &runtime.RelationError{Field: f.Name, Message: "failed to set related id", Err: err}
		}
		return nil
	case schema.ManyToMany:
		ids := l.ids
		if len(l.objects) > 0 {
			created, err := d.insertWeak(ctx, tx, l.target, l.objects)
			if err != nil {
				return &runtime.RelationError{Field: f.Name, Message: "failed to insert related models", Err: err}
			}
			ids = append(append([]any{}, ids...), created...)
		}
		return d.insertLinks(ctx, tx, s, id, l.target, f, ids)
	case schema.Reverse:
		return nil
	default:
		return fmt.Errorf("unknown relation kind %s", f.Relation.Kind)
	}
}

// resolveOne returns the id of a OneToMany link, inserting its weak object
// first. An empty link resolves to 0, which clears the key.
func (d *Driver) resolveOne(ctx context.Context, tx *runtime.Tx, l *link) (any, error) {
	switch {
	case len(l.objects) > 0:
		id, err := d.insertOne(ctx, tx, l.target, l.objects[0])
		if err != nil {
			return nil, &runtime.RelationError{Field: l.field.Name, Message: "failed to insert related model", Err: err}
		}
		return id, nil
	case len(l.ids) > 0:
		return l.ids[0], nil
	default:
		return int64(0), nil
	}
}

func (d *Driver) insertLinks(ctx context.Context, tx *runtime.Tx, s *schema.Schema, id any, target *schema.Schema, f *schema.Field, ids []any) error {
	if len(ids) == 0 {
		return nil
	}
	ownerCol, targetCol := schema.JoinColumns(s.Name(), target.Name())
	ins := builder.Insert(schema.JoinTableName(s.Name(), f.Name)).Columns(ownerCol, targetCol)
	for _, tid := range ids {
		ins.Values(id, tid)
	}
	if _, err := run(ctx, tx, ins); err != nil {
		return &runtime.RelationError{Field: f.Name, Message: "failed to link related models", Err: err}
	}
	return nil
}

// detachOneToMany unlinks the target current from the owner row id. A weak
// target is removed. With clearKey the owner's column is reset to 0.
func (d *Driver) detachOneToMany(ctx context.Context, tx *runtime.Tx, s *schema.Schema, id any, f *schema.Field, current any, clearKey bool) error {
	if f.IsWeak() {
		if relID, ok := relationID(current, ""); ok {
			target, err := d.target(f)
			if err != nil {
				return err
			}
			if err := d.removeOne(ctx, tx, target, relID); err != nil {
				return &runtime.RelationError{Field: f.Name, Message: "failed to remove related model", Err: err}
			}
		}
	}
	if !clearKey {
		return nil
	}

	upd := builder.Update(s.Name()).
		Set(f.Name, 0).
		Where(builder.QuoteIdent(s.PrimaryKey())+" = ?", id)
	if _, err := run(ctx, tx, upd); err != nil {
		return &runtime.RelationError{Field: f.Name, Message: "failed to clear related id", Err: err}
	}
	return nil
}

// detachManyToMany removes the links of the owner row id to the targets
// matching cond, or to every target when cond is nil. Weak targets left
// without any link are deleted.
func (d *Driver) detachManyToMany(ctx context.Context, tx *runtime.Tx, s *schema.Schema, id any, f *schema.Field, cond *query.Condition) error {
	target, err := d.target(f)
	if err != nil {
		return err
	}
	join := builder.QuoteIdent(schema.JoinTableName(s.Name(), f.Name))
	ownerCol, targetCol := schema.JoinColumns(s.Name(), target.Name())

	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?", builder.QuoteIdent(targetCol), join, builder.QuoteIdent(ownerCol))
	if cond != nil {
		where, err := d.compiler.Condition(target.Name(), cond)
		if err != nil {
			return &runtime.RelationError{Field: f.Name, Message: "invalid condition", Err: err}
		}
		if where != "" {
			sql += fmt.Sprintf(" AND %s IN (SELECT %s FROM %s WHERE %s)",
				builder.QuoteIdent(targetCol),
				builder.QuoteIdent(target.PrimaryKey()),
				builder.QuoteIdent(target.Name()),
				where,
			)
		}
	}

	rows, err := tx.Query(ctx, sql, id)
	if err != nil {
		return &runtime.RelationError{Field: f.Name, Message: "failed to resolve linked models", Err: err}
	}
	if len(rows) == 0 {
		return nil
	}
	ids := make([]any, len(rows))
	for i, row := range rows {
		ids[i] = row[targetCol]
	}

	del := builder.Delete(schema.JoinTableName(s.Name(), f.Name)).
		Where(builder.QuoteIdent(ownerCol)+" = ?", id).
		Where(builder.InList(targetCol, len(ids)), ids...)
	if _, err := run(ctx, tx, del); err != nil {
		return &runtime.RelationError{Field: f.Name, Message: "failed to unlink related models", Err: err}
	}

	if !f.IsWeak() {
		return nil
	}
	orphans := builder.Delete(target.Name()).
		Where(builder.InList(target.PrimaryKey(), len(ids)), ids...).
		Where(fmt.Sprintf("%s NOT IN (SELECT %s FROM %s)",
			builder.QuoteIdent(target.PrimaryKey()), builder.QuoteIdent(targetCol), join))
	if _, err := run(ctx, tx, orphans); err != nil {
		return &runtime.RelationError{Field: f.Name, Message: "failed to remove unlinked models", Err: err}
	}
	return nil
}

// Attach links value to relation of the row id of model and returns the
// re-selected owner.
func (d *Driver) Attach(ctx context.Context, model string, id any, relation string, value any, tx *runtime.Tx) (*UpsertResult, error) {
	s, f, err := d.relationField(model, relation)
	if err != nil {
		return nil, err
	}

	var items []Record
	err = d.withTx(ctx, tx, func(tx *runtime.Tx) error {
		l, err := d.prepareLink(f, value)
		if err != nil {
			return err
		}
		if l != nil {
			if err := d.attach(ctx, tx, s, id, l); err != nil {
				return err
			}
		}
		items, err = d.findByID(ctx, tx, s, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &UpsertResult{Items: items}, nil
}

// Detach unlinks relation of the row id of model. The selector restricts
// which ManyToMany targets are unlinked: nil for all, ids, or a condition
// on the target model.
func (d *Driver) Detach(ctx context.Context, model string, id any, relation string, selector any, tx *runtime.Tx) (*UpsertResult, error) {
	s, f, err := d.relationField(model, relation)
	if err != nil {
		return nil, err
	}

	var items []Record
	err = d.withTx(ctx, tx, func(tx *runtime.Tx) error {
		switch f.Relation.Kind {
		case schema.OneToMany:
			current, err := d.currentValues(ctx, tx, s, id, []*schema.Field{f})
			if err != nil {
				return err
			}
			if err := d.detachOneToMany(ctx, tx, s, id, f, current[f.Name], true); err != nil {
				return err
			}
		case schema.ManyToMany:
			cond, matched, err := d.detachCondition(f, selector)
			if err != nil {
				return err
			}
			if matched {
				if err := d.detachManyToMany(ctx, tx, s, id, f, cond); err != nil {
					return err
				}
			}
		case schema.Reverse:
		default:
			return fmt.Errorf("unknown relation kind %s", f.Relation.Kind)
		}
		items, err = d.findByID(ctx, tx, s, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &UpsertResult{Items: items}, nil
}

func (d *Driver) relationField(model, relation string) (*schema.Schema, *schema.Field, error) {
	s, err := d.schema(model)
	if err != nil {
		return nil, nil, err
	}
	f := s.Field(relation)
	if f == nil || f.Type != schema.Relation {
		return nil, nil, &runtime.RelationError{Field: relation, Message: "not a relation of " + model}
	}
	return s, f, nil
}

// detachCondition turns a Detach selector into a condition on the target.
// It reports false when the selector names no target at all.
func (d *Driver) detachCondition(f *schema.Field, selector any) (*query.Condition, bool, error) {
	switch v := selector.(type) {
	case nil:
		return nil, true, nil
	case *query.Condition:
		return v, true, nil
	}

	target, err := d.target(f)
	if err != nil {
		return nil, false, err
	}
	var ids []int64
	for _, el := range toSlice(selector) {
		id, ok := relationID(el, target.PrimaryKey())
		if !ok {
			return nil, false, invalidID(f)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, false, nil
	}
	return query.In(target.PrimaryKey(), ids...), true, nil
}

// currentValues reads the given columns of the row id of s. A missing row
// yields an empty record.
func (d *Driver) currentValues(ctx context.Context, rq runtime.Querier, s *schema.Schema, id any, fields []*schema.Field) (Record, error) {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = builder.QuoteIdent(f.Name)
	}
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		strings.Join(cols, ", "), builder.QuoteIdent(s.Name()), builder.QuoteIdent(s.PrimaryKey()))

	rows, err := rq.Query(ctx, sql, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return Record{}, nil
	}
	return rows[0], nil
}

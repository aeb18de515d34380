package driver

import (
	"context"
	"fmt"

	"github.com/marshallshelly/pebble-mysql/pkg/builder"
	"github.com/marshallshelly/pebble-mysql/pkg/query"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// Remove deletes the rows of model named by selector: an id, a map of field
// values or a *query.Condition. It returns the removed ids.
func (d *Driver) Remove(ctx context.Context, model string, selector any, tx *runtime.Tx) (*DeleteResult, error) {
	s, err := d.schema(model)
	if err != nil {
		return nil, err
	}

	var cond *query.Condition
	id, byID := selectorID(selector)
	if !byID {
		switch v := selector.(type) {
		case *query.Condition:
			cond = v
		case map[string]any:
			cond = valuesCondition(s, v)
		default:
			return nil, runtime.WrongInputf("remove from %s: unsupported selector %T", model, selector)
		}
		if err := d.requireFilter(s, cond, "remove from"); err != nil {
			return nil, err
		}
	}

	var ids []any
	err = d.withTx(ctx, tx, func(tx *runtime.Tx) error {
		if byID {
			ids = []any{id}
			return d.removeOne(ctx, tx, s, id)
		}
		var err error
		if ids, err = d.selectIDs(ctx, tx, s, cond); err != nil {
			return err
		}
		for _, id := range ids {
			if err := d.removeOne(ctx, tx, s, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, &runtime.DeleteError{Model: model, Err: err}
	}
	return &DeleteResult{Items: ids}, nil
}

// requireFilter rejects a condition that compiles to no predicate, since it
// would select every row of s.
func (d *Driver) requireFilter(s *schema.Schema, cond *query.Condition, action string) error {
	where, err := d.compiler.Condition(s.Name(), cond)
	if err != nil {
		return asQueryError(err)
	}
	if where == "" {
		return runtime.WrongInputf("%s %s needs an id or a condition on its fields", action, s.Name())
	}
	return nil
}

// removeOne deletes the row id, its list rows and its links. Weak related
// rows are removed with it.
func (d *Driver) removeOne(ctx context.Context, tx *runtime.Tx, s *schema.Schema, id any) error {
	var weak []*schema.Field
	for _, f := range s.RelationsByKind(schema.OneToMany) {
		if f.IsWeak() {
			weak = append(weak, f)
		}
	}
	current := Record{}
	if len(weak) > 0 {
		var err error
		if current, err = d.currentValues(ctx, tx, s, id, weak); err != nil {
			return err
		}
	}

	del := builder.Delete(s.Name()).Where(builder.QuoteIdent(s.PrimaryKey())+" = ?", id)
	if _, err := run(ctx, tx, del); err != nil {
		return err
	}

	for _, f := range s.ListFields() {
		del := builder.Delete(schema.ListTableName(s.Name(), f.Name)).
			Where(builder.QuoteIdent(schema.ListForeignKey)+" = ?", id)
		if _, err := run(ctx, tx, del); err != nil {
			return fmt.Errorf("list %s: %w", f.Name, err)
		}
	}

	for _, f := range s.RelationFields() {
		switch f.Relation.Kind {
		case schema.OneToMany:
			if err := d.detachOneToMany(ctx, tx, s, id, f, current[f.Name], false); err != nil {
				return err
			}
		case schema.ManyToMany:
			if err := d.detachManyToMany(ctx, tx, s, id, f, nil); err != nil {
				return err
			}
		case schema.Reverse:
		default:
			return fmt.Errorf("unknown relation kind %s", f.Relation.Kind)
		}
	}
	return nil
}

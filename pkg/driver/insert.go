package driver

import (
	"context"
	"fmt"

	"github.com/marshallshelly/pebble-mysql/pkg/builder"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// write is one object split into its primary-table columns, relation links
// and list rows.
type write struct {
	columns []string
	values  []any
	links   []*link
	lists   []listValue
}

type listValue struct {
	field  *schema.Field
	values []any
}

// decompose splits value for s. Keys that are not fields of s are ignored,
// as are multilingual fields. For updates the primary key is left out.
func (d *Driver) decompose(s *schema.Schema, value map[string]any, update bool) (*write, error) {
	w := &write{}
	for _, f := range s.Fields() {
		v, ok := value[f.Name]
		if !ok {
			continue
		}

		switch {
		case f.Primary:
			if update || v == nil {
				continue
			}
			w.columns = append(w.columns, f.Name)
			w.values = append(w.values, v)
		case f.Type == schema.List:
			w.lists = append(w.lists, listValue{field: f, values: toSlice(v)})
		case f.Type == schema.Relation:
			if v == nil && !update {
				continue
			}
			l, err := d.prepareLink(f, v)
			if err != nil {
				return nil, err
			}
			if l != nil {
				w.links = append(w.links, l)
			}
		case f.IsColumn():
			encoded, err := encodeColumn(f, v)
			if err != nil {
				return nil, err
			}
			w.columns = append(w.columns, f.Name)
			w.values = append(w.values, encoded)
		}
	}
	return w, nil
}

// Insert writes one object (a map) or many (a slice of maps) to model. A
// single object is inserted with its relations and lists in one
// transaction and returned re-selected. Many objects are inserted with one
// multi-row statement and returned as given.
func (d *Driver) Insert(ctx context.Context, model string, value any, tx *runtime.Tx) (*UpsertResult, error) {
	s, err := d.schema(model)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case map[string]any:
		return d.insert(ctx, s, v, tx)
	case []map[string]any:
		return d.insertMany(ctx, s, v, tx)
	case []any:
		objects := make([]map[string]any, len(v))
		for i, el := range v {
			obj, ok := el.(map[string]any)
			if !ok {
				return nil, runtime.WrongInputf("insert into %s: element %d is %T, not an object", model, i, el)
			}
			objects[i] = obj
		}
		return d.insertMany(ctx, s, objects, tx)
	default:
		return nil, runtime.WrongInputf("insert into %s: unsupported value %T", model, value)
	}
}

func (d *Driver) insert(ctx context.Context, s *schema.Schema, value map[string]any, tx *runtime.Tx) (*UpsertResult, error) {
	var items []Record
	err := d.withTx(ctx, tx, func(tx *runtime.Tx) error {
		id, err := d.insertOne(ctx, tx, s, value)
		if err != nil {
			return err
		}
		items, err = d.findByID(ctx, tx, s, id)
		return err
	})
	if err != nil {
		return nil, &runtime.InsertError{Model: s.Name(), Err: err}
	}
	return &UpsertResult{Items: items}, nil
}

// insertOne inserts value with its links and lists and returns its id.
// Relation values are validated before any statement runs.
func (d *Driver) insertOne(ctx context.Context, tx *runtime.Tx, s *schema.Schema, value map[string]any) (any, error) {
	w, err := d.decompose(s, value, false)
	if err != nil {
		return nil, err
	}

	sql, args, err := builder.Insert(s.Name()).Columns(w.columns...).Values(w.values...).ToSetSQL()
	if err != nil {
		return nil, err
	}
	res, err := tx.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	var id any = res.LastInsertID
	if pk := value[s.PrimaryKey()]; pk != nil {
		id = pk
	}

	for _, l := range w.links {
		if err := d.attach(ctx, tx, s, id, l); err != nil {
			return nil, err
		}
	}
	for _, lv := range w.lists {
		if err := d.insertList(ctx, tx, s, id, lv); err != nil {
			return nil, err
		}
	}
	return id, nil
}

func (d *Driver) insertList(ctx context.Context, rq runtime.Querier, s *schema.Schema, id any, lv listValue) error {
	if len(lv.values) == 0 {
		return nil
	}
	ins := builder.Insert(schema.ListTableName(s.Name(), lv.field.Name)).
		Columns(schema.ListForeignKey, schema.ListValue)
	for _, v := range lv.values {
		ins.Values(id, v)
	}
	if _, err := run(ctx, rq, ins); err != nil {
		return fmt.Errorf("list %s: %w", lv.field.Name, err)
	}
	return nil
}

func (d *Driver) insertMany(ctx context.Context, s *schema.Schema, values []map[string]any, tx *runtime.Tx) (*UpsertResult, error) {
	rq, err := d.querier(tx)
	if err != nil {
		return nil, err
	}
	if _, err := d.insertAll(ctx, rq, s, values); err != nil {
		return nil, &runtime.InsertError{Model: s.Name(), Err: err}
	}
	return &UpsertResult{Items: values}, nil
}

// insertAll inserts values in one multi-row statement. Only column fields
// are written; the primary key is written when the first value carries it.
// Absent columns default to 0 for numeric fields and '' otherwise.
func (d *Driver) insertAll(ctx context.Context, rq runtime.Querier, s *schema.Schema, values []map[string]any) (runtime.Result, error) {
	if len(values) == 0 {
		return runtime.Result{}, nil
	}

	var fields []*schema.Field
	var cols []string
	for _, f := range s.ColumnFields() {
		if f.Primary && values[0][f.Name] == nil {
			continue
		}
		fields = append(fields, f)
		cols = append(cols, f.Name)
	}

	ins := builder.Insert(s.Name()).Columns(cols...)
	for _, value := range values {
		row := make([]any, len(fields))
		for i, f := range fields {
			v, err := d.bulkValue(f, value)
			if err != nil {
				return runtime.Result{}, err
			}
			row[i] = v
		}
		ins.Values(row...)
	}

	res, err := run(ctx, rq, ins)
	if err != nil {
		return runtime.Result{}, err
	}
	if res.RowsAffected != int64(len(values)) {
		return res, fmt.Errorf("inserted %d of %d rows", res.RowsAffected, len(values))
	}
	return res, nil
}

func (d *Driver) bulkValue(f *schema.Field, value map[string]any) (any, error) {
	v, ok := value[f.Name]
	if !ok {
		return zeroValue(f), nil
	}
	if f.IsRelation(schema.OneToMany) && v != nil {
		target, err := d.target(f)
		if err != nil {
			return nil, err
		}
		id, ok := relationID(v, target.PrimaryKey())
		if !ok {
			return nil, invalidID(f)
		}
		return id, nil
	}
	return encodeColumn(f, v)
}

func zeroValue(f *schema.Field) any {
	switch {
	case f.Type == schema.Boolean:
		return false
	case f.Type.IsNumeric():
		return 0
	default:
		return ""
	}
}

// insertWeak inserts weak related objects and returns their ids. MySQL
// reports the first id of a multi-row insert; InnoDB assigns the rest
// consecutively.
func (d *Driver) insertWeak(ctx context.Context, tx *runtime.Tx, target *schema.Schema, objects []Record) ([]any, error) {
	res, err := d.insertAll(ctx, tx, target, objects)
	if err != nil {
		return nil, err
	}

	ids := make([]any, len(objects))
	for i := range ids {
		ids[i] = res.LastInsertID + int64(i)
	}
	return ids, nil
}

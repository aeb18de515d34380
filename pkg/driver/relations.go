package driver

import (
	"context"
	"fmt"
	"strings"

	"github.com/marshallshelly/pebble-mysql/pkg/builder"
	"github.com/marshallshelly/pebble-mysql/pkg/query"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

const (
	ownerKey  = "__owner"
	targetKey = "__target"
)

// resolveRelations loads the ManyToMany and Reverse relations requested by
// q and stitches them onto rows by primary key. OneToMany relations are
// already part of the primary SELECT.
func (d *Driver) resolveRelations(ctx context.Context, rq runtime.Querier, s *schema.Schema, q *query.Query, rows []Record) error {
	if len(q.Relations) == 0 || len(rows) == 0 {
		return nil
	}

	ids, index := indexRows(rows, s.PrimaryKey())
	if len(ids) == 0 {
		return nil
	}

	for _, rel := range q.Relations {
		f := s.Field(rel.Name)
		if f == nil || f.Type != schema.Relation {
			return &runtime.RelationError{Field: rel.Name, Message: "not a relation of " + s.Name()}
		}

		var sql string
		var target *schema.Schema
		var err error
		switch f.Relation.Kind {
		case schema.OneToMany:
			continue
		case schema.ManyToMany:
			target, sql, err = d.manyToManySQL(s, f, rel.Fields, len(ids))
		case schema.Reverse:
			target, sql, err = d.reverseSQL(s, f, rel.Fields, len(ids))
		default:
			err = fmt.Errorf("unknown relation kind %s", f.Relation.Kind)
		}
		if err != nil {
			return err
		}

		related, err := rq.Query(ctx, sql, ids...)
		if err != nil {
			return err
		}
		merge(rows, index, rel.Name, target, related)
	}
	return nil
}

// manyToManySQL selects the targets linked to the owners through the join
// table.
func (d *Driver) manyToManySQL(owner *schema.Schema, f *schema.Field, allow []string, n int) (*schema.Schema, string, error) {
	target, err := d.target(f)
	if err != nil {
		return nil, "", err
	}
	ownerCol, targetCol := schema.JoinColumns(owner.Name(), target.Name())
	return target, linkedSQL(target, allow, schema.JoinTableName(owner.Name(), f.Name), ownerCol, targetCol, n), nil
}

// reverseSQL selects the rows of the target that point back at the owners,
// either through their OneToMany column or through their join table.
func (d *Driver) reverseSQL(owner *schema.Schema, f *schema.Field, allow []string, n int) (*schema.Schema, string, error) {
	target, err := d.target(f)
	if err != nil {
		return nil, "", err
	}

	back := target.OwningFieldFor(owner.Name())
	if back == nil {
		return nil, "", &runtime.RelationError{
			Field:   f.Name,
			Message: fmt.Sprintf("%s has no relation pointing at %s", target.Name(), owner.Name()),
		}
	}

	switch back.Relation.Kind {
	case schema.OneToMany:
		sql := fmt.Sprintf("SELECT %s, m.%s AS %s, m.%s AS %s FROM %s m WHERE m.%s",
			selectList(target, allow),
			builder.QuoteIdent(back.Name), builder.QuoteIdent(ownerKey),
			builder.QuoteIdent(target.PrimaryKey()), builder.QuoteIdent(targetKey),
			builder.QuoteIdent(target.Name()),
			builder.InList(back.Name, n),
		)
		return target, sql, nil
	case schema.ManyToMany:
		targetCol, ownerCol := schema.JoinColumns(target.Name(), owner.Name())
		return target, linkedSQL(target, allow, schema.JoinTableName(target.Name(), back.Name), ownerCol, targetCol, n), nil
	case schema.Reverse:
		return nil, "", fmt.Errorf("reverse relation %s cannot point at another reverse relation", f.Name)
	default:
		return nil, "", fmt.Errorf("unknown relation kind %s", back.Relation.Kind)
	}
}

func linkedSQL(target *schema.Schema, allow []string, join, ownerCol, targetCol string, n int) string {
	return fmt.Sprintf("SELECT %s, r.%s AS %s, r.%s AS %s FROM %s m LEFT JOIN %s r ON (m.%s = r.%s) WHERE r.%s",
		selectList(target, allow),
		builder.QuoteIdent(ownerCol), builder.QuoteIdent(ownerKey),
		builder.QuoteIdent(targetCol), builder.QuoteIdent(targetKey),
		builder.QuoteIdent(target.Name()),
		builder.QuoteIdent(join),
		builder.QuoteIdent(target.PrimaryKey()), builder.QuoteIdent(targetCol),
		builder.InList(ownerCol, n),
	)
}

func selectList(target *schema.Schema, allow []string) string {
	fields := builder.SubSelectFields(target, allow)
	cols := make([]string, len(fields))
	for i, name := range fields {
		cols[i] = "m." + builder.QuoteIdent(name)
	}
	return strings.Join(cols, ", ")
}

// indexRows returns the distinct primary keys of rows in order, and the row
// positions for each key.
func indexRows(rows []Record, pk string) ([]any, map[string][]int) {
	ids := make([]any, 0, len(rows))
	index := make(map[string][]int, len(rows))
	for i, row := range rows {
		id, ok := row[pk]
		if !ok || id == nil {
			continue
		}
		key := idKey(id)
		if _, seen := index[key]; !seen {
			ids = append(ids, id)
		}
		index[key] = append(index[key], i)
	}
	return ids, index
}

// merge assigns each fetched row to its owners. Every owner gets a list,
// empty when nothing is related, and fetch order is kept.
func merge(rows []Record, index map[string][]int, name string, target *schema.Schema, related []Record) {
	groups := make(map[string][]Record, len(index))
	for _, rec := range related {
		owner := idKey(rec[ownerKey])
		rec[target.PrimaryKey()] = rec[targetKey]
		delete(rec, ownerKey)
		delete(rec, targetKey)
		coerceRecord(target, rec)
		groups[owner] = append(groups[owner], rec)
	}

	for key, positions := range index {
		for _, i := range positions {
			list := groups[key]
			if list == nil {
				list = []Record{}
			}
			rows[i][name] = list
		}
	}
}

// fetchLists loads the list fields selected by q and groups their values by
// owner.
func (d *Driver) fetchLists(ctx context.Context, rq runtime.Querier, s *schema.Schema, q *query.Query, rows []Record) error {
	if len(rows) == 0 {
		return nil
	}

	var fields []*schema.Field
	for _, f := range s.ListFields() {
		if q.HasField(f.Name) {
			fields = append(fields, f)
		}
	}
	if len(fields) == 0 {
		return nil
	}

	ids, index := indexRows(rows, s.PrimaryKey())
	if len(ids) == 0 {
		return nil
	}

	for _, f := range fields {
		sql := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s ORDER BY %s",
			builder.QuoteIdent(schema.ListForeignKey),
			builder.QuoteIdent(schema.ListValue),
			builder.QuoteIdent(schema.ListTableName(s.Name(), f.Name)),
			builder.InList(schema.ListForeignKey, len(ids)),
			builder.QuoteIdent(schema.DefaultPrimaryKey),
		)
		values, err := rq.Query(ctx, sql, ids...)
		if err != nil {
			return err
		}

		groups := make(map[string][]any, len(index))
		for _, v := range values {
			key := idKey(v[schema.ListForeignKey])
			groups[key] = append(groups[key], coerce(f.Element, v[schema.ListValue]))
		}
		for key, positions := range index {
			for _, i := range positions {
				list := groups[key]
				if list == nil {
					list = []any{}
				}
				rows[i][f.Name] = list
			}
		}
	}
	return nil
}

package driver

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/marshallshelly/pebble-mysql/pkg/builder"
	"github.com/marshallshelly/pebble-mysql/pkg/query"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// normalize shapes primary rows of q in place: scalar columns are converted
// to their field types, Object columns and sub-selects are decoded.
func (d *Driver) normalize(s *schema.Schema, q *query.Query, rows []Record) error {
	subs := make(map[string]*query.Query)
	for _, sel := range q.Fields {
		if sel.Sub != nil {
			subs[schema.Camel(sel.Sub.Model)] = sel.Sub
		}
	}

	for _, row := range rows {
		for key, v := range row {
			f := s.Field(key)
			switch {
			case f != nil && f.IsRelation(schema.OneToMany):
				rel, requested := q.Relation(key)
				if !requested {
					row[key] = coerce(schema.Integer, v)
					continue
				}
				target, err := d.target(f)
				if err != nil {
					return err
				}
				decoded, err := d.decodeRow(target, builder.SubSelectFields(target, rel.Fields), v)
				if err != nil {
					return fmt.Errorf("relation %s: %w", key, err)
				}
				row[key] = decoded
			case f != nil:
				row[key] = coerce(f.Type, v)
			case subs[key] != nil:
				sub := subs[key]
				target, err := d.catalog.Get(sub.Model)
				if err != nil {
					return err
				}
				decoded, err := d.decodeRow(target, builder.SubSelectFields(target, sub.FieldNames()), v)
				if err != nil {
					return fmt.Errorf("sub-query %s: %w", key, err)
				}
				row[key] = decoded
			}
		}
	}
	return nil
}

// decodeRow decodes one packed sub-select value. NULL and the empty string
// decode to nil.
func (d *Driver) decodeRow(target *schema.Schema, fields []string, v any) (any, error) {
	raw, ok := v.(string)
	if !ok || raw == "" {
		return nil, nil
	}

	var rec Record
	switch d.encoding {
	case builder.JSONObject:
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode sub-select: %w", err)
		}
	case builder.Delimited:
		m, err := builder.DecodeDelimited(raw, fields)
		if err != nil {
			return nil, err
		}
		rec = m
	default:
		return nil, fmt.Errorf("unknown sub-select encoding %d", int(d.encoding))
	}

	coerceRecord(target, rec)
	return rec, nil
}

// coerceRecord converts the known fields of rec to their field types.
func coerceRecord(s *schema.Schema, rec Record) {
	for key, v := range rec {
		if f := s.Field(key); f != nil {
			rec[key] = coerce(columnType(f), v)
		}
	}
}

// columnType is the type a field's stored column decodes to.
func columnType(f *schema.Field) schema.FieldType {
	if f.IsRelation(schema.OneToMany) {
		return schema.Integer
	}
	return f.Type
}

// coerce converts a scanned or JSON-decoded value to Go's representation
// of t. Values that cannot be converted are returned unchanged.
func coerce(t schema.FieldType, v any) any {
	if v == nil {
		return nil
	}

	switch t {
	case schema.Integer, schema.Enum, schema.Timestamp, schema.Relation:
		if n, ok := toInt64(v); ok {
			return n
		}
	case schema.Float, schema.Number:
		if f, ok := toFloat64(v); ok {
			return f
		}
	case schema.Boolean:
		if b, ok := toBool(v); ok {
			return b
		}
	case schema.Object:
		if raw, ok := v.(string); ok && raw != "" {
			var out any
			if err := json.Unmarshal([]byte(raw), &out); err == nil {
				return out
			}
		}
	case schema.String, schema.Text, schema.Password, schema.File, schema.Email, schema.Tel, schema.URL:
		if b, ok := v.([]byte); ok {
			return string(b)
		}
	case schema.List:
	default:
	}
	return v
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt(f)
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
	case []byte:
		return toInt64(string(n))
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	case []byte:
		return toFloat64(string(n))
	}
	if i, ok := toInt64(v); ok {
		return float64(i), true
	}
	return 0, false
}

func toBool(v any) (bool, bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "1", "true":
			return true, true
		case "0", "false", "":
			return false, true
		}
		return false, false
	}
	if i, ok := toInt64(v); ok {
		return i != 0, true
	}
	return false, false
}

// idKey renders a key value so that ids scanned as int64 and ids decoded as
// strings or floats index the same bucket.
func idKey(v any) string {
	if n, ok := toInt64(v); ok {
		return strconv.FormatInt(n, 10)
	}
	return fmt.Sprint(v)
}

// encodeColumn prepares a value for a column of field f. Object values are
// stored as JSON text.
func encodeColumn(f *schema.Field, v any) (any, error) {
	if f.Type != schema.Object || v == nil {
		return v, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("field %s: failed to encode object: %w", f.Name, err)
	}
	return string(b), nil
}

package builder

import (
	"fmt"
	"strings"

	"github.com/marshallshelly/pebble-mysql/pkg/query"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// SubSelectFields returns the target fields packed into a OneToMany
// sub-select: the allow-list filtered to known columns, or every column.
func SubSelectFields(target *schema.Schema, allow []string) []string {
	var out []string
	if len(allow) == 0 {
		for _, f := range target.ColumnFields() {
			out = append(out, f.Name)
		}
		return out
	}
	for _, name := range allow {
		if f := target.Field(name); f != nil && f.IsColumn() {
			out = append(out, name)
		}
	}
	return out
}

// relationSubSelect renders the correlated sub-select for a OneToMany relation,
// aliased to the relation name.
func (c *Compiler) relationSubSelect(alias string, f *schema.Field, allow []string) (string, error) {
	target, err := c.catalog.Get(f.Relation.Target)
	if err != nil {
		return "", fmt.Errorf("relation %s: %w", f.Name, err)
	}

	fields := SubSelectFields(target, allow)
	if len(fields) == 0 {
		return "", fmt.Errorf("relation %s: no fields to select", f.Name)
	}

	return fmt.Sprintf("(SELECT %s FROM %s AS c WHERE c.%s = %s LIMIT 1) AS %s",
		c.packRow("c", fields),
		QuoteIdent(target.Name()),
		QuoteIdent(target.PrimaryKey()),
		Qualified(alias, f.Name),
		QuoteIdent(f.Name),
	), nil
}

// inlineSubquery renders a nested query as a one-row sub-select aliased to
// the camel-cased model name.
func (c *Compiler) inlineSubquery(sub *query.Query) (string, error) {
	s, err := c.catalog.Get(sub.Model)
	if err != nil {
		return "", fmt.Errorf("sub-query: %w", err)
	}

	fields := SubSelectFields(s, sub.FieldNames())
	if len(fields) == 0 {
		return "", fmt.Errorf("sub-query on %s: no fields to select", sub.Model)
	}

	var sql strings.Builder
	sql.WriteString("(SELECT ")
	sql.WriteString(c.packRow(sub.Model, fields))
	sql.WriteString(" FROM ")
	sql.WriteString(QuoteIdent(sub.Model))

	where, err := c.condition(sub.Model, sub.Model, sub.Where)
	if err != nil {
		return "", fmt.Errorf("sub-query on %s: %w", sub.Model, err)
	}
	if where != "" {
		sql.WriteString(" WHERE ")
		sql.WriteString(where)
	}

	if order := orderBy(s, sub.OrderBy, sub.Model); len(order) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(order, ", "))
	}

	sql.WriteString(" LIMIT 1) AS ")
	sql.WriteString(QuoteIdent(schema.Camel(sub.Model)))
	return sql.String(), nil
}

// packRow renders an expression folding the named columns of alias into one value.
func (c *Compiler) packRow(alias string, fields []string) string {
	ref := func(name string) string {
		if alias == "c" {
			return "c." + QuoteIdent(name)
		}
		return Qualified(alias, name)
	}

	parts := make([]string, len(fields))
	switch c.encoding {
	case Delimited:
		mark := QuoteString(DelimiterMark)
		for i, name := range fields {
			parts[i] = fmt.Sprintf("%s, %s, COALESCE(%s,''), %s",
				QuoteString(DelimiterMark+name+DelimiterMark+":"), mark, ref(name), mark)
		}
		return "CONCAT('{', " + strings.Join(parts, ", ',', ") + ", '}')"
	default:
		for i, name := range fields {
			parts[i] = QuoteString(name) + ", " + ref(name)
		}
		return "JSON_OBJECT(" + strings.Join(parts, ", ") + ")"
	}
}

// DecodeDelimited parses a Delimited sub-select value produced for fields.
// Values are returned as strings. A value containing DelimiterMark makes the
// encoding ambiguous and is rejected.
func DecodeDelimited(raw string, fields []string) (map[string]any, error) {
	if want := 4 * len(fields); strings.Count(raw, DelimiterMark) != want {
		return nil, fmt.Errorf("delimited value has %d markers, want %d: a field value contains %q",
			strings.Count(raw, DelimiterMark), want, DelimiterMark)
	}

	rest, ok := strings.CutPrefix(raw, "{")
	if !ok {
		return nil, fmt.Errorf("delimited value must start with '{'")
	}

	out := make(map[string]any, len(fields))
	for i, name := range fields {
		head := DelimiterMark + name + DelimiterMark + ":" + DelimiterMark
		if rest, ok = strings.CutPrefix(rest, head); !ok {
			return nil, fmt.Errorf("delimited value: expected field %q", name)
		}

		end := strings.Index(rest, DelimiterMark)
		out[name] = rest[:end]
		rest = rest[end+len(DelimiterMark):]

		sep := ","
		if i == len(fields)-1 {
			sep = "}"
		}
		if rest, ok = strings.CutPrefix(rest, sep); !ok {
			return nil, fmt.Errorf("delimited value: expected %q after field %q", sep, name)
		}
	}

	if rest != "" {
		return nil, fmt.Errorf("delimited value: trailing data %q", rest)
	}
	return out, nil
}

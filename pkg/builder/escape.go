package builder

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// datetimeLayout is the literal format MySQL accepts for DATETIME and TIMESTAMP.
const datetimeLayout = "2006-01-02 15:04:05.999999"

// QuoteIdent wraps an identifier in backticks, doubling embedded backticks.
func QuoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Qualified renders `table`.`column`.
func Qualified(table, column string) string {
	return QuoteIdent(table) + "." + QuoteIdent(column)
}

// Escape renders v as a MySQL literal safe to embed in a statement.
// NaN and infinities become 0, booleans become 1 or 0, strings are quoted
// with backslash escaping, and nil becomes NULL. Values of other types are
// JSON encoded and quoted.
func Escape(v any) string {
	switch val := v.(type) {
	case nil:
		return "NULL"
	case bool:
		if val {
			return "1"
		}
		return "0"
	case int:
		return strconv.FormatInt(int64(val), 10)
	case int8:
		return strconv.FormatInt(int64(val), 10)
	case int16:
		return strconv.FormatInt(int64(val), 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint8:
		return strconv.FormatUint(uint64(val), 10)
	case uint16:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return formatFloat(float64(val))
	case float64:
		return formatFloat(val)
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return formatFloat(f)
		}
		return QuoteString(val.String())
	case string:
		return QuoteString(val)
	case []byte:
		return QuoteString(string(val))
	case time.Time:
		return QuoteString(val.UTC().Format(datetimeLayout))
	case fmt.Stringer:
		return QuoteString(val.String())
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return QuoteString(fmt.Sprint(val))
		}
		return QuoteString(string(b))
	}
}

func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// QuoteString quotes s as a MySQL string literal using backslash escapes.
func QuoteString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\x1a':
			b.WriteString(`\Z`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

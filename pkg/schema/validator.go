package schema

import (
	"fmt"
	"strings"
)

// ValidateField checks that a field definition is internally consistent.
func ValidateField(f *Field) error {
	if _, ok := fieldTypeNames[f.Type]; !ok {
		return fmt.Errorf("field %s: unknown type %s", f.Name, f.Type)
	}

	switch f.Type {
	case Relation:
		if f.Relation == nil || f.Relation.Target == "" {
			return fmt.Errorf("field %s: relation target is required", f.Name)
		}
		switch f.Relation.Kind {
		case OneToMany, ManyToMany, Reverse:
		default:
			return fmt.Errorf("field %s: unknown relation kind %s", f.Name, f.Relation.Kind)
		}
		if f.Primary {
			return fmt.Errorf("field %s: a relation cannot be the primary key", f.Name)
		}
	case List:
		if !f.Element.IsScalar() {
			return fmt.Errorf("field %s: list element must be a scalar type, got %s", f.Name, f.Element)
		}
		if f.Primary {
			return fmt.Errorf("field %s: a list cannot be the primary key", f.Name)
		}
	}

	if f.MaxLength < 0 {
		return fmt.Errorf("field %s: maxLength must not be negative", f.Name)
	}

	if f.Default != nil {
		if err := ValidateDefaultValue(f.Type, f.Default); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}

	return nil
}

// ValidateDefaultValue checks that a default value can be stored in a column of type t.
// Returns an error with a suggested fix when the value is clearly incompatible.
func ValidateDefaultValue(t FieldType, v any) error {
	switch t {
	case Boolean:
		switch val := v.(type) {
		case bool:
			return nil
		case string:
			switch strings.ToLower(strings.TrimSpace(val)) {
			case "true", "false", "1", "0":
				return nil
			}
			return fmt.Errorf("invalid DEFAULT value %q for boolean field\nFix: use true or false", val)
		case int, int64:
			return nil
		}
	case Integer, Enum, Timestamp, Float, Number:
		switch val := v.(type) {
		case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
			return nil
		case string:
			if isNumeric(strings.TrimSpace(val)) {
				return nil
			}
			return fmt.Errorf("invalid DEFAULT value %q for %s field\nFix: use a numeric literal", val, t)
		}
	case Relation, List:
		return fmt.Errorf("%s fields cannot declare a DEFAULT value", t)
	default:
		return nil
	}
	return fmt.Errorf("unsupported DEFAULT value %v (%T) for %s field", v, v, t)
}

// isNumeric checks if a string is a valid number
func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	digits := 0
	for i, c := range s {
		if i == 0 && (c == '-' || c == '+') {
			continue
		}
		if c == '.' {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
		digits++
	}
	return digits > 0
}

package migration

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/marshallshelly/pebble-mysql/pkg/builder"
	"github.com/marshallshelly/pebble-mysql/pkg/registry"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

const (
	defaultVarcharLength    = 255
	defaultDecimalPrecision = 20
	maxDecimalPrecision     = 65
	decimalScale            = 10
	defaultIntWidth         = 20
)

// PlannerOptions configures DDL generation.
type PlannerOptions struct {
	// Engine is the storage engine of every table.
	// Default: InnoDB
	Engine string
}

// Planner generates DROP/CREATE statements from schemas.
type Planner struct {
	options PlannerOptions
}

// NewPlanner creates a new planner with default options.
func NewPlanner() *Planner {
	return NewPlannerWithOptions(PlannerOptions{})
}

// NewPlannerWithOptions creates a new planner with custom options.
func NewPlannerWithOptions(opts PlannerOptions) *Planner {
	if opts.Engine == "" {
		opts.Engine = "InnoDB"
	}
	return &Planner{options: opts}
}

// Plan generates the DDL for every schema of the catalog. Output depends
// only on the catalog, so planning twice gives identical plans.
func (p *Planner) Plan(cat *registry.Catalog) (*Plan, error) {
	plan := &Plan{}
	for _, s := range cat.All() {
		tp, err := p.PlanSchema(s)
		if err != nil {
			return nil, err
		}
		plan.Tables = append(plan.Tables, tp)
	}
	return plan, nil
}

// PlanSchema generates the statements for one schema: its primary table,
// the translation table when it has multilingual fields, one join table per
// ManyToMany field and one list table per List field.
func (p *Planner) PlanSchema(s *schema.Schema) (TablePlan, error) {
	tp := TablePlan{Model: s.Name()}
	pk := s.Field(s.PrimaryKey())

	add := func(table string, fields []*schema.Field, pkName string) error {
		cols := make([]string, 0, len(fields))
		for _, f := range fields {
			def, err := p.ColumnDefinition(f)
			if err != nil {
				return fmt.Errorf("%s.%s: %w", table, f.Name, err)
			}
			cols = append(cols, def)
		}
		tp.Tables = append(tp.Tables, table)
		tp.Statements = append(tp.Statements,
			p.generateDropTable(table),
			p.generateCreateTable(table, cols, pkName),
		)
		return nil
	}

	if err := add(s.Name(), s.ColumnFields(), pk.Name); err != nil {
		return TablePlan{}, err
	}

	if lingual := s.MultilingualFields(); len(lingual) > 0 {
		fields := append(append([]*schema.Field{}, lingual...), pk)
		if err := add(schema.TranslationTableName(s.Name()), fields, pk.Name); err != nil {
			return TablePlan{}, err
		}
	}

	for _, f := range s.Fields() {
		switch {
		case f.IsRelation(schema.ManyToMany):
			ownerCol, targetCol := schema.JoinColumns(s.Name(), f.RelationTarget())
			if ownerCol == targetCol {
				return TablePlan{}, fmt.Errorf("%s.%s: self-referencing ManyToMany needs distinct join columns, both are %q", s.Name(), f.Name, ownerCol)
			}
			fields := []*schema.Field{
				surrogateKey(),
				schema.NewField(ownerCol, schema.Integer, schema.Required()),
				schema.NewField(targetCol, schema.Integer, schema.Required()),
			}
			if err := add(schema.JoinTableName(s.Name(), f.Name), fields, schema.DefaultPrimaryKey); err != nil {
				return TablePlan{}, err
			}
		case f.Type == schema.List:
			fields := []*schema.Field{
				surrogateKey(),
				schema.NewField(schema.ListForeignKey, schema.Integer, schema.Required()),
				schema.NewField(schema.ListValue, f.Element, schema.Required()),
			}
			if err := add(schema.ListTableName(s.Name(), f.Name), fields, schema.DefaultPrimaryKey); err != nil {
				return TablePlan{}, err
			}
		}
	}

	return tp, nil
}

func surrogateKey() *schema.Field {
	return schema.NewField(schema.DefaultPrimaryKey, schema.Integer, schema.PrimaryKey(), schema.Required())
}

// generateDropTable generates a DROP TABLE statement.
func (p *Planner) generateDropTable(table string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", builder.QuoteIdent(table))
}

// generateCreateTable generates a CREATE TABLE statement.
func (p *Planner) generateCreateTable(table string, columns []string, pk string) string {
	parts := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		parts = append(parts, "    "+col)
	}
	parts = append(parts, fmt.Sprintf("    PRIMARY KEY (%s)", builder.QuoteIdent(pk)))

	return fmt.Sprintf("CREATE TABLE %s (\n%s\n) ENGINE=%s;", builder.QuoteIdent(table), strings.Join(parts, ",\n"), p.options.Engine)
}

// ColumnDefinition renders the column clause of a field.
func (p *Planner) ColumnDefinition(f *schema.Field) (string, error) {
	sqlType, err := ColumnType(f)
	if err != nil {
		return "", err
	}
	parts := []string{builder.QuoteIdent(f.Name), sqlType}

	if (f.Required && f.Type != schema.Relation) || f.Primary {
		parts = append(parts, "NOT NULL")
	}

	// TEXT columns cannot carry a DEFAULT in MySQL.
	oneToMany := f.IsRelation(schema.OneToMany)
	if (f.Default != nil && sqlType != "TEXT") || oneToMany {
		parts = append(parts, "DEFAULT", defaultLiteral(f, oneToMany))
	}

	if f.Unique {
		parts = append(parts, "UNIQUE")
	}

	if f.Primary && (strings.HasPrefix(sqlType, "INT") || sqlType == "BIGINT") {
		parts = append(parts, "AUTO_INCREMENT")
	}

	return strings.Join(parts, " "), nil
}

// ColumnType maps a field to its MySQL column type.
func ColumnType(f *schema.Field) (string, error) {
	switch f.Type {
	case schema.Boolean:
		return "BOOLEAN", nil
	case schema.String, schema.Email, schema.File, schema.Password, schema.Tel, schema.URL:
		if f.Primary {
			return "BIGINT", nil
		}
		n := f.MaxLength
		if n <= 0 {
			n = defaultVarcharLength
		}
		return fmt.Sprintf("VARCHAR(%d)", n), nil
	case schema.Float, schema.Number:
		precision := defaultDecimalPrecision
		if f.Max != 0 {
			precision = len(strconv.FormatFloat(f.Max, 'f', -1, 64)) + decimalScale
		}
		precision = min(precision, maxDecimalPrecision)
		return fmt.Sprintf("DECIMAL(%d,%d)", precision, decimalScale), nil
	case schema.Integer, schema.Enum:
		if f.Primary {
			return "BIGINT", nil
		}
		width := defaultIntWidth
		if f.Max >= 1 {
			width = len(strconv.FormatInt(int64(f.Max), 2))
		}
		return fmt.Sprintf("INT(%d)", width), nil
	case schema.Object, schema.Text:
		return "TEXT", nil
	case schema.Timestamp:
		return "BIGINT", nil
	case schema.Relation:
		if f.IsRelation(schema.OneToMany) {
			return "BIGINT", nil
		}
		return "", fmt.Errorf("relation %s is not stored as a column", f.Name)
	case schema.List:
		return "", fmt.Errorf("list %s is not stored as a column", f.Name)
	default:
		return "", fmt.Errorf("unknown field type %v", f.Type)
	}
}

func defaultLiteral(f *schema.Field, oneToMany bool) string {
	if oneToMany {
		return "'0'"
	}
	if f.Type == schema.Boolean {
		if truthy(f.Default) {
			return "TRUE"
		}
		return "FALSE"
	}

	switch v := f.Default.(type) {
	case string:
		return builder.QuoteString(v)
	case bool, int, int32, int64, uint, uint32, uint64, float32, float64:
		return builder.QuoteString(fmt.Sprint(v))
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return builder.QuoteString(fmt.Sprint(v))
		}
		return builder.QuoteString(string(b))
	}
}

func truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		b, err := strconv.ParseBool(val)
		return err == nil && b
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return false
	}
}

// AlterDatabase renders the statement that sets the database character set.
func AlterDatabase(database, charset, collation string) string {
	return fmt.Sprintf("ALTER DATABASE %s CHARACTER SET = %s COLLATE = %s;", builder.QuoteIdent(database), charset, collation)
}

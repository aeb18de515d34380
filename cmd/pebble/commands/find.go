package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-mysql/cmd/pebble/output"
	"github.com/marshallshelly/pebble-mysql/pkg/query"
)

var (
	// Find flags
	whereExprs []string
	fields     []string
	relations  []string
	orderBy    []string
	limit      int
	page       int
	countOnly  bool
)

// findCmd runs a query against a model
var findCmd = &cobra.Command{
	Use:   "find MODEL",
	Short: "Query the rows of a model",
	Long: `Query the rows of a model and print them as JSON.

Conditions are ANDed. Supported operators: = != > >= < <= ~ (LIKE) !~ (NOT LIKE).

Examples:
  pebble find User --where age>=18 --where name~a% --order age:desc
  pebble find User --fields name --with groups --limit 10 --page 2
  pebble find User --where active=1 --count`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runFind(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	findCmd.Flags().StringArrayVarP(&whereExprs, "where", "w", nil, "Condition FIELD<op>VALUE (repeatable)")
	findCmd.Flags().StringSliceVarP(&fields, "fields", "f", nil, "Fields to select")
	findCmd.Flags().StringSliceVar(&relations, "with", nil, "Relations to resolve")
	findCmd.Flags().StringSliceVar(&orderBy, "order", nil, "Ordering FIELD[:asc|:desc]")
	findCmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of rows")
	findCmd.Flags().IntVar(&page, "page", 0, "1-based page, requires --limit")
	findCmd.Flags().BoolVar(&countOnly, "count", false, "Only count matching rows")
}

func runFind(cmd *cobra.Command, model string) error {
	cond, err := parseWhere(whereExprs)
	if err != nil {
		return err
	}

	cat, err := loadCatalog()
	if err != nil {
		return err
	}
	d, err := openDriver(cmd.Context(), cat)
	if err != nil {
		return err
	}
	defer d.Close()

	if countOnly {
		res, err := d.Count(cmd.Context(), model, cond, nil)
		if err != nil {
			return err
		}
		if jsonOutput {
			return output.JSON(res)
		}
		output.Info("%s", output.Count(int(res.Total), "row"))
		return nil
	}

	opts := &query.Options{Fields: fields, Limit: limit, Page: page}
	for _, o := range orderBy {
		order, err := parseOrder(o)
		if err != nil {
			return err
		}
		opts.OrderBy = append(opts.OrderBy, order)
	}

	q := opts.Apply(query.New(model).Filter(cond))
	for _, rel := range relations {
		q.WithRelation(rel)
	}

	res, err := d.FindQuery(cmd.Context(), q, nil)
	if err != nil {
		return err
	}
	if err := output.JSON(res.Items); err != nil {
		return err
	}
	if !jsonOutput {
		output.Muted("%s", output.Count(res.Total, "row"))
	}
	return nil
}

type whereOp struct {
	token string
	build func(field string, value any) *query.Condition
}

// Longer tokens first so that ">=" is not read as ">".
var whereOps = []whereOp{
	{">=", query.Gte},
	{"<=", query.Lte},
	{"!=", query.NotEq},
	{"!~", func(f string, v any) *query.Condition { return query.NotLike(f, fmt.Sprint(v)) }},
	{"=", query.Eq},
	{">", query.Gt},
	{"<", query.Lt},
	{"~", func(f string, v any) *query.Condition { return query.Like(f, fmt.Sprint(v)) }},
}

func parseWhere(exprs []string) (*query.Condition, error) {
	if len(exprs) == 0 {
		return nil, nil
	}

	conds := make([]*query.Condition, 0, len(exprs))
	for _, expr := range exprs {
		c, err := parseCondition(expr)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	if len(conds) == 1 {
		return conds[0], nil
	}
	return query.And(conds...), nil
}

func parseCondition(expr string) (*query.Condition, error) {
	at, op := -1, whereOp{}
	for _, candidate := range whereOps {
		if i := strings.Index(expr, candidate.token); i > 0 && (at < 0 || i < at) {
			at, op = i, candidate
		}
	}
	if at < 0 {
		return nil, fmt.Errorf("invalid condition %q: expected FIELD<op>VALUE", expr)
	}

	field := strings.TrimSpace(expr[:at])
	raw := strings.TrimSpace(expr[at+len(op.token):])
	return op.build(field, parseValue(raw)), nil
}

// parseValue reads integers and floats as numbers; anything else stays a
// string.
func parseValue(raw string) any {
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func parseOrder(s string) (query.Order, error) {
	field, dir, _ := strings.Cut(s, ":")
	order := query.Order{Field: field, Direction: query.Asc}
	switch strings.ToLower(dir) {
	case "", "asc":
	case "desc":
		order.Direction = query.Desc
	default:
		return order, fmt.Errorf("invalid order %q: direction must be asc or desc", s)
	}
	return order, nil
}

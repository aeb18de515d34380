package builder

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/marshallshelly/pebble-mysql/pkg/query"
	"github.com/marshallshelly/pebble-mysql/pkg/registry"
)

func TestCondition(t *testing.T) {
	tests := []struct {
		name    string
		cond    *query.Condition
		wantSQL string
	}{
		{
			name:    "nil condition",
			cond:    nil,
			wantSQL: "",
		},
		{
			name:    "equality",
			cond:    query.Eq("name", "a"),
			wantSQL: "(`User`.`name` = 'a')",
		},
		{
			name:    "injection attempt stays one literal",
			cond:    query.Eq("name", "'); DROP TABLE x; --"),
			wantSQL: "(`User`.`name` = '\\'); DROP TABLE x; --')",
		},
		{
			name:    "unknown field compiles to empty",
			cond:    query.Eq("password", "x"),
			wantSQL: "",
		},
		{
			name:    "all-empty connector compiles to empty",
			cond:    query.And(query.Eq("nope", 1), query.Or(query.Eq("nada", 2))),
			wantSQL: "",
		},
		{
			name:    "empty children are dropped",
			cond:    query.And(query.Eq("name", "a"), query.Eq("nope", 1)),
			wantSQL: "((`User`.`name` = 'a'))",
		},
		{
			name:    "negated disjunction",
			cond:    query.Not(query.Or(query.Eq("age", 1), query.Gt("age", 5))),
			wantSQL: "NOT (((`User`.`age` = 1) OR (`User`.`age` > 5)))",
		},
		{
			name:    "negated empty stays empty",
			cond:    query.Not(query.Eq("nope", 1)),
			wantSQL: "",
		},
		{
			name:    "boolean literal",
			cond:    query.Eq("active", true),
			wantSQL: "(`User`.`active` = 1)",
		},
		{
			name:    "NaN becomes zero",
			cond:    query.Lte("age", math.NaN()),
			wantSQL: "(`User`.`age` <= 0)",
		},
		{
			name:    "field reference",
			cond:    query.NotEq("name", query.Col("profile")),
			wantSQL: "(`User`.`name` <> `User`.`profile`)",
		},
		{
			name:    "verbatim reference",
			cond:    query.Eq("role", query.Col("`Role`.`id`")),
			wantSQL: "(`User`.`role` = `Role`.`id`)",
		},
		{
			name:    "regex",
			cond:    query.Regex("name", "^a"),
			wantSQL: "(`User`.`name` REGEXP '^a')",
		},
		{
			name:    "not like",
			cond:    query.NotLike("name", "%x%"),
			wantSQL: "(`User`.`name` NOT LIKE '%x%')",
		},
		{
			name:    "model override",
			cond:    query.And(query.Eq("age", 3), query.Eq("level", 2).On("Role")),
			wantSQL: "((`User`.`age` = 3) AND (`Role`.`level` = 2))",
		},
		{
			name:    "many-to-many field is not a column",
			cond:    query.Eq("groups", 1),
			wantSQL: "",
		},
		{
			name:    "in expands to or",
			cond:    query.In("age", 1, 2),
			wantSQL: "((`User`.`age` = 1) OR (`User`.`age` = 2))",
		},
	}

	c := testCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, err := c.Condition("User", tt.cond)
			if err != nil {
				t.Fatalf("Condition() error = %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("Condition() =\n  %s\nwant\n  %s", sql, tt.wantSQL)
			}
		})
	}
}

func TestConditionErrors(t *testing.T) {
	c := testCompiler()

	t.Run("unknown model", func(t *testing.T) {
		_, err := c.Condition("Ghost", query.Eq("name", "a"))
		if !errors.Is(err, registry.ErrUnknownModel) {
			t.Fatalf("expected ErrUnknownModel, got %v", err)
		}
	})

	t.Run("childless connector", func(t *testing.T) {
		bad := query.NewCondition(query.OpAnd)
		bad.Field = "name"
		if _, err := c.Condition("User", query.Or(bad)); err != nil {
			t.Fatalf("a connector without children should compile empty, got %v", err)
		}
	})

	t.Run("unknown operator", func(t *testing.T) {
		_, err := c.Condition("User", query.NewCondition(query.Operator(99)).Compare("name", "a"))
		if err == nil || !strings.Contains(err.Error(), "unknown operator") {
			t.Fatalf("expected unknown operator error, got %v", err)
		}
	})
}

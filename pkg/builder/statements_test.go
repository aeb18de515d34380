package builder

import (
	"reflect"
	"testing"
)

func TestWriteStatements(t *testing.T) {
	tests := []struct {
		name     string
		build    func() (string, []any, error)
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "insert set form",
			build: func() (string, []any, error) {
				return Insert("User").Columns("name", "age").Values("a", 3).ToSetSQL()
			},
			wantSQL:  "INSERT INTO `User` SET `name` = ?, `age` = ?",
			wantArgs: []any{"a", 3},
		},
		{
			name: "insert set form without columns",
			build: func() (string, []any, error) {
				return Insert("User").Values().ToSetSQL()
			},
			wantSQL: "INSERT INTO `User` () VALUES ()",
		},
		{
			name: "multi-row insert",
			build: func() (string, []any, error) {
				return Insert("UserTagsList").Columns("fk", "value").Values(5, "a").Values(5, "b").ToSQL()
			},
			wantSQL:  "INSERT INTO `UserTagsList` (`fk`,`value`) VALUES (?,?), (?,?)",
			wantArgs: []any{5, "a", 5, "b"},
		},
		{
			name: "update by id",
			build: func() (string, []any, error) {
				return Update("User").Set("name", "b").Set("role", 3).Where("`id` = ?", 5).ToSQL()
			},
			wantSQL:  "UPDATE `User` SET `name` = ?, `role` = ? WHERE `id` = ?",
			wantArgs: []any{"b", 3, 5},
		},
		{
			name: "increment",
			build: func() (string, []any, error) {
				return Update("User").Increment("age", 2).Where("`id` = ?", 5).ToSQL()
			},
			wantSQL:  "UPDATE `User` SET `age` = `age` + (?) WHERE `id` = ?",
			wantArgs: []any{2, 5},
		},
		{
			name: "delete in list",
			build: func() (string, []any, error) {
				return Delete("User").Where(InList("id", 3), 1, 2, 3).ToSQL()
			},
			wantSQL:  "DELETE FROM `User` WHERE `id` IN (?,?,?)",
			wantArgs: []any{1, 2, 3},
		},
		{
			name: "delete join rows",
			build: func() (string, []any, error) {
				return Delete("UserHasGroups").Where("`user` = ?", 5).Where(InList("group", 1), 1).ToSQL()
			},
			wantSQL:  "DELETE FROM `UserHasGroups` WHERE `user` = ? AND `group` IN (?)",
			wantArgs: []any{5, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args, err := tt.build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sql != tt.wantSQL {
				t.Errorf("SQL = %s, want %s", sql, tt.wantSQL)
			}
			if len(args) != 0 || len(tt.wantArgs) != 0 {
				if !reflect.DeepEqual(args, tt.wantArgs) {
					t.Errorf("args = %v, want %v", args, tt.wantArgs)
				}
			}
		})
	}
}

func TestWriteStatementErrors(t *testing.T) {
	if _, _, err := Insert("User").ToSQL(); err == nil {
		t.Error("expected error for INSERT without rows")
	}
	if _, _, err := Insert("User").Columns("a", "b").Values(1).ToSQL(); err == nil {
		t.Error("expected error for short row")
	}
	if _, _, err := Update("User").Set("a", 1).ToSQL(); err == nil {
		t.Error("expected error for UPDATE without WHERE")
	}
	if _, _, err := Update("User").Where("`id` = ?", 1).ToSQL(); err == nil {
		t.Error("expected error for UPDATE without SET")
	}
	if _, _, err := Delete("User").ToSQL(); err == nil {
		t.Error("expected error for DELETE without WHERE")
	}
}

package builder

import (
	"strings"
	"testing"

	"github.com/marshallshelly/pebble-mysql/pkg/query"
)

const userColumns = "`User`.`id`, `User`.`name`, `User`.`age`, `User`.`active`, `User`.`profile`"

func TestSelectQuery(t *testing.T) {
	tests := []struct {
		name     string
		encoding Encoding
		query    *query.Query
		wantSQL  string
	}{
		{
			name:    "default fields include one-to-many columns",
			query:   query.New("User"),
			wantSQL: "SELECT " + userColumns + ", `User`.`role` FROM `User`",
		},
		{
			name:    "page three of ten",
			query:   query.New("Role").SetLimit(10).SetPage(3),
			wantSQL: "SELECT `Role`.`id`, `Role`.`name`, `Role`.`level` FROM `Role` LIMIT 20,10",
		},
		{
			name:    "explicit offset",
			query:   query.New("Role").SetLimit(5).SetOffset(2),
			wantSQL: "SELECT `Role`.`id`, `Role`.`name`, `Role`.`level` FROM `Role` LIMIT 2,5",
		},
		{
			name:    "zero limit is unbounded",
			query:   query.New("Role").SetLimit(0).SetPage(3),
			wantSQL: "SELECT `Role`.`id`, `Role`.`name`, `Role`.`level` FROM `Role`",
		},
		{
			name:    "unknown order fields are dropped",
			query:   query.New("Role").Order("name", query.Desc).Order("bogus", query.Asc).Order("level", query.Asc),
			wantSQL: "SELECT `Role`.`id`, `Role`.`name`, `Role`.`level` FROM `Role` ORDER BY `Role`.`name` DESC, `Role`.`level` ASC",
		},
		{
			name:    "explicit fields are filtered",
			query:   query.New("Role").Select("name", "bogus"),
			wantSQL: "SELECT `Role`.`name` FROM `Role`",
		},
		{
			name:    "selected list field pulls in the key",
			query:   query.New("User").Select("name", "tags"),
			wantSQL: "SELECT `User`.`id`, `User`.`name` FROM `User`",
		},
		{
			name:    "many-to-many relation pulls in the key",
			query:   query.New("User").Select("name").WithRelation("groups"),
			wantSQL: "SELECT `User`.`id`, `User`.`name` FROM `User`",
		},
		{
			name:  "one-to-many relation as JSON object",
			query: query.New("User").WithRelation("role", "name"),
			wantSQL: "SELECT " + userColumns +
				", (SELECT JSON_OBJECT('name', c.`name`) FROM `Role` AS c WHERE c.`id` = `User`.`role` LIMIT 1) AS `role`" +
				" FROM `User`",
		},
		{
			name:     "one-to-many relation delimited",
			encoding: Delimited,
			query:    query.New("User").Select("name").WithRelation("role", "name"),
			wantSQL: "SELECT `User`.`name`" +
				", (SELECT CONCAT('{', '<#quote#>name<#quote#>:', '<#quote#>', COALESCE(c.`name`,''), '<#quote#>', '}') FROM `Role` AS c WHERE c.`id` = `User`.`role` LIMIT 1) AS `role`" +
				" FROM `User`",
		},
		{
			name: "join folds fields condition and order",
			query: query.New("User").Select("name").
				Filter(query.Eq("age", 3)).
				Join(query.InnerJoin, "role", query.New("Role").Select("name").Filter(query.Eq("level", 2)).Order("level", query.Desc)),
			wantSQL: "SELECT `User`.`name`, `Role`.`name` AS `Role.name` FROM `User`" +
				" INNER JOIN `Role` AS `Role` ON (`User`.`role` = `Role`.`id`)" +
				" WHERE (`User`.`age` = 3) AND (`Role`.`level` = 2)" +
				" ORDER BY `Role`.`level` DESC",
		},
		{
			name:    "default join keyword",
			query:   query.New("User").Select("name").Join(query.LeftJoin, "role", nil),
			wantSQL: "SELECT `User`.`name`, `Role`.`id` AS `Role.id`, `Role`.`name` AS `Role.name`, `Role`.`level` AS `Role.level`" +
				" FROM `User` LEFT JOIN `Role` AS `Role` ON (`User`.`role` = `Role`.`id`)",
		},
		{
			name: "inline sub-query",
			query: query.New("User").Select("name").
				SelectSub(query.New("Role").Select("name").Filter(query.Eq("id", query.Col("`User`.`role`")))),
			wantSQL: "SELECT `User`.`name`, (SELECT JSON_OBJECT('name', `Role`.`name`) FROM `Role` WHERE (`Role`.`id` = `User`.`role`) LIMIT 1) AS `role` FROM `User`",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			compiled, err := testCompiler(WithEncoding(tt.encoding)).Query(tt.query)
			if err != nil {
				t.Fatalf("Query() error = %v", err)
			}
			if got := compiled.SQL(); got != tt.wantSQL {
				t.Errorf("SQL() =\n  %s\nwant\n  %s", got, tt.wantSQL)
			}
		})
	}
}

func TestSelectQueryErrors(t *testing.T) {
	tests := []struct {
		name    string
		query   *query.Query
		wantErr string
	}{
		{"unknown model", query.New("Ghost"), "unknown model"},
		{"unknown relation", query.New("User").WithRelation("friends"), "unknown relation"},
		{"relation on plain field", query.New("User").WithRelation("name"), "unknown relation"},
		{"join on non relation", query.New("User").Join(query.LeftJoin, "name", nil), "not a OneToMany"},
		{"join on wrong model", query.New("User").Join(query.LeftJoin, "role", query.New("Group")), "want Role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testCompiler().Query(tt.query)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestCountSQL(t *testing.T) {
	compiled, err := testCompiler().Query(query.New("User").Filter(query.Gt("age", 1)).SetLimit(10))
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	want := "SELECT COUNT(*) AS total FROM `User` WHERE (`User`.`age` > 1)"
	if got := compiled.CountSQL(); got != want {
		t.Errorf("CountSQL() = %s, want %s", got, want)
	}
}

func TestDecodeDelimited(t *testing.T) {
	m := DelimiterMark
	fields := []string{"name", "note"}

	t.Run("round trip with awkward characters", func(t *testing.T) {
		raw := "{" + m + "name" + m + ":" + m + `a "quoted", {x}` + m + "," + m + "note" + m + ":" + m + "" + m + "}"
		got, err := DecodeDelimited(raw, fields)
		if err != nil {
			t.Fatalf("DecodeDelimited() error = %v", err)
		}
		if got["name"] != `a "quoted", {x}` || got["note"] != "" {
			t.Errorf("unexpected result %v", got)
		}
	})

	t.Run("value containing the marker is rejected", func(t *testing.T) {
		raw := "{" + m + "name" + m + ":" + m + "evil" + m + m + "," + m + "note" + m + ":" + m + "" + m + "}"
		if _, err := DecodeDelimited(raw, fields); err == nil {
			t.Fatal("expected error for value containing the marker")
		}
	})

	t.Run("wrong field order", func(t *testing.T) {
		raw := "{" + m + "note" + m + ":" + m + "x" + m + "," + m + "name" + m + ":" + m + "y" + m + "}"
		if _, err := DecodeDelimited(raw, fields); err == nil {
			t.Fatal("expected error for unexpected field")
		}
	})
}

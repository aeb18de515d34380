package driver

import (
	"strconv"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-mysql/pkg/registry"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

const (
	userSelect = "SELECT `User`.`id`, `User`.`name`, `User`.`age`, `User`.`active`, `User`.`profile`, `User`.`role` FROM `User`"
	userTags   = "SELECT `fk`, `value` FROM `UserTagsList` WHERE `fk` IN (?) ORDER BY `id`"
)

var userColumns = []string{"id", "name", "age", "active", "profile", "role"}

func testCatalog() *registry.Catalog {
	return registry.MustCatalog(
		schema.MustNew("User",
			schema.NewField("name", schema.String),
			schema.NewField("age", schema.Integer),
			schema.NewField("active", schema.Boolean),
			schema.NewField("profile", schema.Object),
			schema.NewRelation("role", "Role", schema.OneToMany),
			schema.NewRelation("groups", "Group", schema.ManyToMany),
			schema.NewList("tags", schema.String),
		),
		schema.MustNew("Role",
			schema.NewField("name", schema.String),
		),
		schema.MustNew("Group",
			schema.NewField("title", schema.String),
			schema.NewRelation("members", "User", schema.Reverse),
		),
		schema.MustNew("Post",
			schema.NewField("title", schema.String),
			schema.NewRelation("notes", "Note", schema.ManyToMany, schema.Weak()),
			schema.NewRelation("cover", "Image", schema.OneToMany, schema.Weak()),
		),
		schema.MustNew("Note",
			schema.NewField("text", schema.String),
		),
		schema.MustNew("Image",
			schema.NewField("url", schema.URL),
		),
	)
}

func newMockDriver(t *testing.T, opts ...Option) (*Driver, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db := runtime.NewDB(sqlDB, runtime.DefaultConfig())
	return New(db.Config(), testCatalog(), append([]Option{WithDB(db)}, opts...)...), mock
}

// expectUser expects the re-select of user id with no tags.
func expectUser(mock sqlmock.Sqlmock, id int64, name string) {
	mock.ExpectQuery(userSelect + " WHERE (`User`.`id` = " + strconv.FormatInt(id, 10) + ") LIMIT 0,1").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id, name, int64(30), int64(1), nil, int64(0)))
	mock.ExpectQuery(userTags).WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"fk", "value"}))
}

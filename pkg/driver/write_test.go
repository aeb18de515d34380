package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-mysql/pkg/query"
	"github.com/marshallshelly/pebble-mysql/pkg/runtime"
)

func TestInsertUserWithRole(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `User` SET `name` = ?, `age` = ?, `profile` = ?").
		WithArgs("ann", 31, `{"theme":"dark"}`).
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("UPDATE `User` SET `role` = ? WHERE `id` = ?").
		WithArgs(2, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `UserHasGroups` (`user`,`group`) VALUES (?,?), (?,?)").
		WithArgs(5, 10, 5, 11).
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectExec("INSERT INTO `UserTagsList` (`fk`,`value`) VALUES (?,?), (?,?)").
		WithArgs(5, "a", 5, "b").
		WillReturnResult(sqlmock.NewResult(1, 2))
	mock.ExpectQuery(userSelect + " WHERE (`User`.`id` = 5) LIMIT 0,1").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(5), "ann", int64(31), int64(0), `{"theme":"dark"}`, int64(2)))
	mock.ExpectQuery(userTags).WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"fk", "value"}).
			AddRow(int64(5), "a").
			AddRow(int64(5), "b"))
	mock.ExpectCommit()

	res, err := d.Insert(context.Background(), "User", map[string]any{
		"name":    "ann",
		"age":     31,
		"profile": map[string]any{"theme": "dark"},
		"role":    map[string]any{"id": 2, "name": "admin"},
		"groups":  []int{10, 11},
		"tags":    []string{"a", "b"},
		"unknown": true,
	}, nil)
	require.NoError(t, err)
	require.Len(t, res.Items, 1)

	got := res.Items[0]
	assert.Equal(t, int64(5), got["id"])
	assert.Equal(t, "ann", got["name"])
	assert.Equal(t, int64(31), got["age"])
	assert.Equal(t, int64(2), got["role"])
	assert.Equal(t, map[string]any{"theme": "dark"}, got["profile"])
	assert.Equal(t, []any{"a", "b"}, got["tags"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRejectsInvalidRelationBeforeWriting(t *testing.T) {
	tests := []struct {
		name  string
		value map[string]any
	}{
		{"negative one-to-many id", map[string]any{"name": "ann", "role": -1}},
		{"object without key", map[string]any{"name": "ann", "role": map[string]any{"name": "admin"}}},
		{"bad many-to-many element", map[string]any{"name": "ann", "groups": []any{1, "x"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newMockDriver(t)

			_, err := d.Insert(context.Background(), "User", tt.value, nil)
			require.Error(t, err)

			var relErr *runtime.RelationError
			require.True(t, errors.As(err, &relErr))
			assert.Contains(t, relErr.Message, "related model id")
			assert.Equal(t, runtime.CodeInsert, runtime.CodeOf(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestInsertAttachFailureRollsBackImplicitTx(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `User` SET `name` = ?").
		WithArgs("ann").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("INSERT INTO `UserHasGroups` (`user`,`group`) VALUES (?,?)").
		WithArgs(5, 10).
		WillReturnError(errors.New("foreign key violation"))
	mock.ExpectRollback()

	_, err := d.Insert(context.Background(), "User", map[string]any{"name": "ann", "groups": 10}, nil)
	require.Error(t, err)
	assert.Equal(t, runtime.CodeInsert, runtime.CodeOf(err))

	var relErr *runtime.RelationError
	assert.True(t, errors.As(err, &relErr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertAttachFailureLeavesSuppliedTxPending(t *testing.T) {
	d, mock := newMockDriver(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `User` SET `name` = ?").
		WithArgs("ann").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec("INSERT INTO `UserHasGroups` (`user`,`group`) VALUES (?,?)").
		WithArgs(5, 10).
		WillReturnError(errors.New("foreign key violation"))

	tx, err := d.Begin()
	require.NoError(t, err)

	_, err = d.Insert(ctx, "User", map[string]any{"name": "ann", "groups": []any{10}}, tx)
	require.Error(t, err)
	assert.Equal(t, runtime.TxActive, tx.State())
	assert.NoError(t, mock.ExpectationsWereMet())

	mock.ExpectRollback()
	require.NoError(t, tx.Rollback(ctx))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertWeakManyToMany(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `Post` SET `title` = ?").
		WithArgs("hello").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO `Note` (`text`) VALUES (?), (?)").
		WithArgs("a", "b").
		WillReturnResult(sqlmock.NewResult(20, 2))
	mock.ExpectExec("INSERT INTO `PostHasNotes` (`post`,`note`) VALUES (?,?), (?,?), (?,?)").
		WithArgs(3, 7, 3, 20, 3, 21).
		WillReturnResult(sqlmock.NewResult(1, 3))
	mock.ExpectQuery("SELECT `Post`.`id`, `Post`.`title`, `Post`.`cover` FROM `Post` WHERE (`Post`.`id` = 3) LIMIT 0,1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "cover"}).AddRow(int64(3), "hello", int64(0)))
	mock.ExpectCommit()

	res, err := d.Insert(context.Background(), "Post", map[string]any{
		"title": "hello",
		"notes": []any{7, map[string]any{"text": "a"}, map[string]any{"text": "b"}},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Items[0]["title"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertWeakOneToMany(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `Post` SET `title` = ?").
		WithArgs("hello").
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec("INSERT INTO `Image` SET `url` = ?").
		WithArgs("https://example.com/a.png").
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectExec("UPDATE `Post` SET `cover` = ? WHERE `id` = ?").
		WithArgs(9, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT `Post`.`id`, `Post`.`title`, `Post`.`cover` FROM `Post` WHERE (`Post`.`id` = 3) LIMIT 0,1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "cover"}).AddRow(int64(3), "hello", int64(9)))
	mock.ExpectCommit()

	res, err := d.Insert(context.Background(), "Post", map[string]any{
		"title": "hello",
		"cover": map[string]any{"url": "https://example.com/a.png"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(9), res.Items[0]["cover"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertMany(t *testing.T) {
	t.Run("defaults absent columns", func(t *testing.T) {
		d, mock := newMockDriver(t)

		mock.ExpectExec("INSERT INTO `User` (`name`,`age`,`active`,`profile`,`role`) VALUES (?,?,?,?,?), (?,?,?,?,?)").
			WithArgs("ann", 31, false, "", 0, "bob", 0, true, "", 2).
			WillReturnResult(sqlmock.NewResult(1, 2))

		values := []any{
			map[string]any{"name": "ann", "age": 31},
			map[string]any{"name": "bob", "active": true, "role": 2, "groups": []any{1}},
		}
		res, err := d.Insert(context.Background(), "User", values, nil)
		require.NoError(t, err)
		assert.Len(t, res.Items, 2)
		assert.NotContains(t, res.Items[0], "id")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("writes the key when the first value has it", func(t *testing.T) {
		d, mock := newMockDriver(t)

		mock.ExpectExec("INSERT INTO `Role` (`id`,`name`) VALUES (?,?)").
			WithArgs(4, "admin").
			WillReturnResult(sqlmock.NewResult(4, 1))

		_, err := d.Insert(context.Background(), "Role", []map[string]any{{"id": 4, "name": "admin"}}, nil)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("affected row mismatch", func(t *testing.T) {
		d, mock := newMockDriver(t)

		mock.ExpectExec("INSERT INTO `Role` (`name`) VALUES (?), (?)").
			WithArgs("a", "b").
			WillReturnResult(sqlmock.NewResult(1, 1))

		_, err := d.Insert(context.Background(), "Role", []map[string]any{{"name": "a"}, {"name": "b"}}, nil)
		require.Error(t, err)
		assert.Equal(t, runtime.CodeInsert, runtime.CodeOf(err))
		assert.Contains(t, err.Error(), "inserted 1 of 2 rows")
	})

	t.Run("rejects non-object elements", func(t *testing.T) {
		d, _ := newMockDriver(t)

		_, err := d.Insert(context.Background(), "Role", []any{map[string]any{"name": "a"}, 3}, nil)
		require.Error(t, err)
		assert.Equal(t, runtime.CodeWrongInput, runtime.CodeOf(err))
	})
}

func TestUpdateOne(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `UserHasGroups` WHERE `user` = ?").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO `UserHasGroups` (`user`,`group`) VALUES (?,?)").
		WithArgs(5, 12).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE `User` SET `name` = ?, `role` = ? WHERE `id` = ?").
		WithArgs("bob", 3, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUser(mock, 5, "bob")
	mock.ExpectCommit()

	res, err := d.Update(context.Background(), "User", map[string]any{
		"id":     5,
		"name":   "bob",
		"role":   map[string]any{"id": 3},
		"groups": []any{12},
	}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "bob", res.Items[0]["name"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateReplacesList(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `UserTagsList` WHERE `fk` = ?").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO `UserTagsList` (`fk`,`value`) VALUES (?,?)").
		WithArgs(5, "c").
		WillReturnResult(sqlmock.NewResult(3, 1))
	expectUser(mock, 5, "ann")
	mock.ExpectCommit()

	_, err := d.Update(context.Background(), "User", map[string]any{"id": 5, "tags": []string{"c"}}, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateClearsListAndLinks(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `UserHasGroups` WHERE `user` = ?").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `UserTagsList` WHERE `fk` = ?").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("UPDATE `User` SET `role` = ? WHERE `id` = ?").
		WithArgs(0, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUser(mock, 5, "ann")
	mock.ExpectCommit()

	_, err := d.Update(context.Background(), "User", map[string]any{
		"id":     5,
		"role":   nil,
		"groups": nil,
		"tags":   []string{},
	}, nil, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateAll(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `User` WHERE (`User`.`age` = 30)").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)).AddRow(int64(2)))
	mock.ExpectExec("UPDATE `User` SET `active` = ? WHERE `id` = ?").
		WithArgs(true, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE `User` SET `active` = ? WHERE `id` = ?").
		WithArgs(true, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(userSelect + " WHERE ((`User`.`id` = 1) OR (`User`.`id` = 2))").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow(int64(1), "ann", int64(30), int64(1), nil, int64(0)).
			AddRow(int64(2), "bob", int64(30), int64(1), nil, int64(0)))
	mock.ExpectQuery("SELECT `fk`, `value` FROM `UserTagsList` WHERE `fk` IN (?,?) ORDER BY `id`").
		WithArgs(1, 2).
		WillReturnRows(sqlmock.NewRows([]string{"fk", "value"}))
	mock.ExpectCommit()

	res, err := d.Update(context.Background(), "User", map[string]any{"active": true}, query.Eq("age", 30), nil)
	require.NoError(t, err)
	require.Len(t, res.Items, 2)
	assert.Equal(t, true, res.Items[1]["active"])
	assert.Equal(t, []any{}, res.Items[1]["tags"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNeedsKeyOrCondition(t *testing.T) {
	d, _ := newMockDriver(t)

	_, err := d.Update(context.Background(), "User", map[string]any{"name": "x"}, nil, nil)
	require.Error(t, err)
	assert.Equal(t, runtime.CodeWrongInput, runtime.CodeOf(err))
}

func TestUpdateRejectsEmptyCondition(t *testing.T) {
	for _, cond := range []*query.Condition{query.In[int]("id"), query.Eq("bogus", 1)} {
		d, mock := newMockDriver(t)

		_, err := d.Update(context.Background(), "Role", map[string]any{"name": "x"}, cond, nil)
		require.Error(t, err)
		assert.Equal(t, runtime.CodeWrongInput, runtime.CodeOf(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	}
}

func TestUpdateAllNoMatch(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `Role` WHERE (`Role`.`name` = 'nobody')").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	res, err := d.Update(context.Background(), "Role", map[string]any{"name": "x"}, query.Eq("name", "nobody"), nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrease(t *testing.T) {
	t.Run("numeric field", func(t *testing.T) {
		d, mock := newMockDriver(t)

		mock.ExpectExec("UPDATE `User` SET `age` = `age` + (?) WHERE `id` = ?").
			WithArgs(2, 5).
			WillReturnResult(sqlmock.NewResult(0, 1))
		expectUser(mock, 5, "ann")

		res, err := d.Increase(context.Background(), "User", 5, "age", 2, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Items[0]["id"])
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	for _, tt := range []struct {
		name  string
		field string
		delta any
	}{
		{"string field", "name", 1},
		{"boolean field", "active", 1},
		{"unknown field", "height", 1},
		{"primary key", "id", 1},
		{"non-numeric delta", "age", "lots"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			d, _ := newMockDriver(t)

			_, err := d.Increase(context.Background(), "User", 5, tt.field, tt.delta, nil)
			require.Error(t, err)
			assert.Equal(t, runtime.CodeWrongInput, runtime.CodeOf(err))
		})
	}
}

func TestRemoveByID(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `User` WHERE `id` = ?").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM `UserTagsList` WHERE `fk` = ?").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectQuery("SELECT `group` FROM `UserHasGroups` WHERE `user` = ?").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"group"}).AddRow(int64(10)))
	mock.ExpectExec("DELETE FROM `UserHasGroups` WHERE `user` = ? AND `group` IN (?)").
		WithArgs(5, 10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := d.Remove(context.Background(), "User", 5, nil)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(5)}, res.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveWeakRelations(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `Post` WHERE (`Post`.`title` LIKE 'draft%')").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(3)))
	mock.ExpectQuery("SELECT `cover` FROM `Post` WHERE `id` = ?").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"cover"}).AddRow(int64(9)))
	mock.ExpectExec("DELETE FROM `Post` WHERE `id` = ?").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT `note` FROM `PostHasNotes` WHERE `post` = ?").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"note"}).AddRow(int64(20)).AddRow(int64(21)))
	mock.ExpectExec("DELETE FROM `PostHasNotes` WHERE `post` = ? AND `note` IN (?,?)").
		WithArgs(3, 20, 21).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `Note` WHERE `id` IN (?,?) AND `id` NOT IN (SELECT `note` FROM `PostHasNotes`)").
		WithArgs(20, 21).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `Image` WHERE `id` = ?").
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	res, err := d.Remove(context.Background(), "Post", query.Like("title", "draft%"), nil)
	require.NoError(t, err)
	assert.Equal(t, []any{int64(3)}, res.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveRejectsMissingSelector(t *testing.T) {
	tests := []struct {
		name     string
		selector any
	}{
		{"nil", nil},
		{"unknown value keys", map[string]any{"bogus": 1}},
		{"unsupported type", []int{1}},
		{"in without values", query.In[int]("id")},
		{"unknown field", query.Eq("bogus", 1)},
		{"empty connector", query.And(query.Eq("bogus", 1), query.Or())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newMockDriver(t)

			res, err := d.Remove(context.Background(), "Role", tt.selector, nil)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.Equal(t, runtime.CodeWrongInput, runtime.CodeOf(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRemoveNoMatch(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id` FROM `Role` WHERE (`Role`.`name` = 'nobody')").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	res, err := d.Remove(context.Background(), "Role", query.Eq("name", "nobody"), nil)
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachThenDetach(t *testing.T) {
	d, mock := newMockDriver(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `UserHasGroups` (`user`,`group`) VALUES (?,?), (?,?)").
		WithArgs(5, 1, 5, 2).
		WillReturnResult(sqlmock.NewResult(1, 2))
	expectUser(mock, 5, "ann")
	mock.ExpectCommit()

	_, err := d.Attach(ctx, "User", 5, "groups", []any{1, 2}, nil)
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `group` FROM `UserHasGroups` WHERE `user` = ? AND `group` IN (SELECT `id` FROM `Group` WHERE ((`Group`.`id` = 1)))").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"group"}).AddRow(int64(1)))
	mock.ExpectExec("DELETE FROM `UserHasGroups` WHERE `user` = ? AND `group` IN (?)").
		WithArgs(5, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUser(mock, 5, "ann")
	mock.ExpectCommit()

	_, err = d.Detach(ctx, "User", 5, "groups", 1, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetachOneToMany(t *testing.T) {
	d, mock := newMockDriver(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `role` FROM `User` WHERE `id` = ?").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow(int64(2)))
	mock.ExpectExec("UPDATE `User` SET `role` = ? WHERE `id` = ?").
		WithArgs(0, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	expectUser(mock, 5, "ann")
	mock.ExpectCommit()

	_, err := d.Detach(context.Background(), "User", 5, "role", nil, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachUnknownRelation(t *testing.T) {
	d, _ := newMockDriver(t)

	_, err := d.Attach(context.Background(), "User", 5, "name", 1, nil)
	require.Error(t, err)
	assert.Equal(t, runtime.CodeRelation, runtime.CodeOf(err))
}

package tui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marshallshelly/pebble-mysql/pkg/migration"
)

func testPlan() *migration.Plan {
	return &migration.Plan{Tables: []migration.TablePlan{
		{Model: "User", Tables: []string{"User", "UserHasGroups"}, Statements: []string{"DROP TABLE IF EXISTS `User`;"}},
		{Model: "Group", Tables: []string{"Group"}, Statements: []string{"DROP TABLE IF EXISTS `Group`;"}},
	}}
}

func statuses(m InitModel) []TableStatus {
	var out []TableStatus
	for _, item := range m.list.Items() {
		out = append(out, item.(TableItem).Status)
	}
	return out
}

func step(t *testing.T, m InitModel, msg any) InitModel {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(InitModel)
	require.True(t, ok)
	return out
}

func TestInitModelSuccess(t *testing.T) {
	ran := false
	m := NewInitModel("shop", testPlan(), func(context.Context) error {
		ran = true
		return nil
	})
	assert.Equal(t, []TableStatus{StatusPending, StatusPending}, statuses(m))

	m = step(t, m, confirmedMsg{})
	assert.Equal(t, ModeExecuting, m.mode)
	assert.Equal(t, []TableStatus{StatusRunning, StatusRunning}, statuses(m))

	m = step(t, m, initDoneMsg{err: m.run(context.Background())})
	assert.True(t, ran)
	assert.True(t, m.Done())
	assert.NoError(t, m.Err())
	assert.Equal(t, []TableStatus{StatusCreated, StatusCreated}, statuses(m))
	assert.Equal(t, 2, m.progress.Current)
}

func TestInitModelFailure(t *testing.T) {
	m := NewInitModel("shop", testPlan(), func(context.Context) error { return nil })

	m = step(t, m, confirmedMsg{})
	m = step(t, m, initDoneMsg{err: errors.New("access denied")})

	assert.Equal(t, ModeError, m.mode)
	assert.False(t, m.Done())
	assert.EqualError(t, m.Err(), "access denied")
	assert.Equal(t, []TableStatus{StatusFailed, StatusFailed}, statuses(m))
}

func TestInitModelCancel(t *testing.T) {
	m := NewInitModel("shop", testPlan(), func(context.Context) error { return nil })

	m = step(t, m, cancelledMsg{})
	assert.Equal(t, ModeList, m.mode)
	assert.False(t, m.Done())
	assert.Equal(t, []TableStatus{StatusPending, StatusPending}, statuses(m))
}

func TestFormatProgressBar(t *testing.T) {
	for _, tt := range []struct {
		current, total int
		want           string
	}{
		{0, 0, "0/0"},
		{1, 2, "1/2"},
		{3, 2, "3/2"},
	} {
		assert.Contains(t, FormatProgressBar(tt.current, tt.total, 10), tt.want)
	}
}

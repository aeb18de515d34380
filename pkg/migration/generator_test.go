package migration

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratorRoundTrip(t *testing.T) {
	fs := afero.NewMemMapFs()
	gen := NewGenerator(fs, "plans")

	plan, err := NewPlanner().Plan(testCatalog())
	require.NoError(t, err)

	path, err := gen.Generate("init", plan)
	require.NoError(t, err)
	assert.Equal(t, "plans", filepath.Dir(path))
	assert.True(t, strings.HasSuffix(path, "_init.sql"))

	files, err := gen.List()
	require.NoError(t, err)
	assert.Equal(t, []string{path}, files)

	content, err := gen.Read(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(content, "-- Plan: init\n"))
	assert.Contains(t, content, "-- Tables: User, User_translation, UserHasGroups, UserTagsList, Role, Group")

	stmts := splitSQL(content)
	require.Len(t, stmts, len(plan.Statements()))
	for i, stmt := range plan.Statements() {
		assert.Equal(t, strings.TrimSuffix(stmt, ";"), stmts[i])
	}
}

func TestGeneratorListMissingDir(t *testing.T) {
	files, err := NewGenerator(afero.NewMemMapFs(), "nowhere").List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestGeneratorListSkipsOtherFiles(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "plans/20240101000000_a.sql", []byte("SELECT 1;"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "plans/notes.txt", []byte("x"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "plans/20230101000000_b.sql", []byte("SELECT 2;"), 0o644))

	files, err := NewGenerator(fs, "plans").List()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("plans", "20230101000000_b.sql"),
		filepath.Join("plans", "20240101000000_a.sql"),
	}, files)
}

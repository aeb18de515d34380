package migration

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// Generator writes plans to SQL files.
type Generator struct {
	fs      afero.Fs
	planDir string
}

// NewGenerator creates a generator writing into planDir on fs.
func NewGenerator(fs afero.Fs, planDir string) *Generator {
	return &Generator{
		fs:      fs,
		planDir: planDir,
	}
}

// Generate writes plan to a new versioned file and returns its path.
func (g *Generator) Generate(name string, plan *Plan) (string, error) {
	if err := g.fs.MkdirAll(g.planDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create plan directory: %w", err)
	}

	version := GenerateVersion()
	path := filepath.Join(g.planDir, GenerateFileName(version, name))

	var content strings.Builder
	fmt.Fprintf(&content, "-- Plan: %s\n-- Created at: %s\n-- Tables: %s\n\n", name, version, strings.Join(plan.TableNames(), ", "))
	content.WriteString(plan.SQL())

	if err := afero.WriteFile(g.fs, path, []byte(content.String()), 0o644); err != nil {
		return "", fmt.Errorf("failed to write plan: %w", err)
	}
	return path, nil
}

// List returns the plan files in version order.
func (g *Generator) List() ([]string, error) {
	entries, err := afero.ReadDir(g.fs, g.planDir)
	if err != nil {
		if exists, _ := afero.DirExists(g.fs, g.planDir); !exists {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read plan directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		files = append(files, filepath.Join(g.planDir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// Read returns the content of a plan file.
func (g *Generator) Read(path string) (string, error) {
	data, err := afero.ReadFile(g.fs, path)
	if err != nil {
		return "", fmt.Errorf("failed to read plan: %w", err)
	}
	return string(data), nil
}

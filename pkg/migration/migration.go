// Package migration generates and applies the MySQL tables for a catalog.
//
// Schema creation is destructive: every table is dropped and recreated.
package migration

import (
	"strings"
	"time"
)

// TablePlan holds the statements that create one model's tables, its
// satellite tables included. Statements run in order.
type TablePlan struct {
	Model      string   // Owning model
	Tables     []string // Every table created, primary table first
	Statements []string // DROP/CREATE pairs
}

// Plan is the DDL for a whole catalog, one TablePlan per model in catalog
// order.
type Plan struct {
	Tables []TablePlan
}

// Statements returns every statement of the plan in order.
func (p *Plan) Statements() []string {
	var out []string
	for _, t := range p.Tables {
		out = append(out, t.Statements...)
	}
	return out
}

// TableNames returns every table the plan creates.
func (p *Plan) TableNames() []string {
	var out []string
	for _, t := range p.Tables {
		out = append(out, t.Tables...)
	}
	return out
}

// SQL renders the plan as a script.
func (p *Plan) SQL() string {
	return strings.Join(p.Statements(), "\n\n") + "\n"
}

// GenerateVersion generates a timestamp-based version string.
// Format: YYYYMMDDHHmmss (e.g., "20240101120000")
func GenerateVersion() string {
	return time.Now().Format("20060102150405")
}

// GenerateFileName generates a plan filename.
// Format: {version}_{name}.sql
func GenerateFileName(version, name string) string {
	return version + "_" + name + ".sql"
}

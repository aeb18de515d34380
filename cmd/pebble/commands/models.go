package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marshallshelly/pebble-mysql/cmd/pebble/output"
	"github.com/marshallshelly/pebble-mysql/pkg/schema"
)

// modelsCmd lists the models of the catalog
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the models and the tables they map to",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runModels()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}

type modelSummary struct {
	Name       string   `json:"name"`
	PrimaryKey string   `json:"primaryKey"`
	Fields     []string `json:"fields"`
	Relations  []string `json:"relations"`
	Tables     []string `json:"tables"`
}

func runModels() error {
	cat, err := loadCatalog()
	if err != nil {
		return err
	}

	planner := newPlanner()
	var summaries []modelSummary
	tables := 0
	for _, s := range cat.All() {
		tp, err := planner.PlanSchema(s)
		if err != nil {
			return fmt.Errorf("failed to plan %s: %w", s.Name(), err)
		}
		summaries = append(summaries, summarize(s, tp.Tables))
		tables += len(tp.Tables)
	}

	if jsonOutput {
		return output.JSON(summaries)
	}

	output.Section("Models")
	rows := make([][]string, len(summaries))
	for i, m := range summaries {
		rows[i] = []string{m.Name, m.PrimaryKey, strings.Join(m.Fields, ", "), strings.Join(m.Relations, ", "), strings.Join(m.Tables, ", ")}
	}
	output.Table([]string{"MODEL", "KEY", "FIELDS", "RELATIONS", "TABLES"}, rows)
	fmt.Println()
	output.Info("%s, %s", output.Count(len(summaries), "model"), output.Count(tables, "table"))
	return nil
}

func summarize(s *schema.Schema, tables []string) modelSummary {
	m := modelSummary{
		Name:       s.Name(),
		PrimaryKey: s.PrimaryKey(),
		Fields:     []string{},
		Relations:  []string{},
		Tables:     tables,
	}
	for _, f := range s.Fields() {
		switch f.Type {
		case schema.Relation:
			rel := fmt.Sprintf("%s %s→%s", f.Name, f.Relation.Kind, f.RelationTarget())
			if f.IsWeak() {
				rel += " (weak)"
			}
			m.Relations = append(m.Relations, rel)
		case schema.List:
			m.Fields = append(m.Fields, fmt.Sprintf("%s []%s", f.Name, f.Element))
		default:
			m.Fields = append(m.Fields, fmt.Sprintf("%s %s", f.Name, f.Type))
		}
	}
	return m
}

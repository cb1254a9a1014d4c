package planner

import (
	"encoding/csv"
	"fmt"
	"io"
)

var csvHeader = []string{"Day", "Meal Type", "Recipe", "URL"}

// WriteCSV writes one row per filled slot. Recipes without a source URL are
// written with "N/A".
func (p WeekPlan) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, m := range p.Meals() {
		if m.Recipe == nil {
			continue
		}
		url := m.Recipe.SourceURL
		if url == "" {
			url = "N/A"
		}
		if err := cw.Write([]string{m.Day, string(m.Slot), m.Recipe.Title, url}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

package solve

import (
	"fmt"
	"io"
	"slices"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/operator-framework/homatch/pkg/matching"
)

func renderSolutions(w io.Writer, solutions []*matching.Solution, format string) error {
	if len(solutions) == 0 {
		_, err := fmt.Fprintln(w, "no solutions found")
		return err
	}
	switch format {
	case OutputPlain:
		return renderPlain(w, solutions)
	default:
		renderTable(w, solutions)
		return nil
	}
}

func renderPlain(w io.Writer, solutions []*matching.Solution) error {
	for i, s := range solutions {
		if _, err := fmt.Fprintf(w, "%d: %s\n", i+1, s); err != nil {
			return err
		}
	}
	return nil
}

// renderTable prints one row per solution and one column per metavariable.
func renderTable(w io.Writer, solutions []*matching.Solution) {
	var metavariables []string
	for _, s := range solutions {
		for _, mv := range s.Domain() {
			if !slices.Contains(metavariables, mv) {
				metavariables = append(metavariables, mv)
			}
		}
	}
	slices.Sort(metavariables)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"#"}
	for _, mv := range metavariables {
		header = append(header, mv)
	}
	t.AppendHeader(header)

	for i, s := range solutions {
		row := table.Row{i + 1}
		for _, mv := range metavariables {
			if v, ok := s.Get(mv); ok {
				row = append(row, v.String())
			} else {
				row = append(row, "")
			}
		}
		t.AppendRow(row)
	}
	t.Render()
}

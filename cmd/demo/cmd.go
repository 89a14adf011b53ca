package demo

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/operator-framework/homatch/pkg/matching"
	"github.com/operator-framework/homatch/pkg/term"
)

func NewDemoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Solves a built-in set of matching problems",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout())
		},
	}
}

// Problems lists the built-in problems as pattern/expression pairs.
var Problems = [][]string{
	{"x__", "5"},
	{"(f x__)", "(f 5)"},
	{"x", "x"},
	{"3", "4"},
	{"x__", "5", "y__", "7"},
	{"(@ P__ a)", "(g a a)"},
	{"(∀ x , (@ P__ x))", "(∀ y , (g y y))"},
	{"(@ P__ a b)", "(g a b)"},
}

func run(w io.Writer) error {
	for i, pairs := range Problems {
		terms := make([]*term.Term, len(pairs))
		for j, s := range pairs {
			t, err := term.Parse(s)
			if err != nil {
				return fmt.Errorf("problem %d: %w", i+1, err)
			}
			terms[j] = t
		}
		problem, err := matching.New(matching.WithPairs(terms...))
		if err != nil {
			return fmt.Errorf("problem %d: %w", i+1, err)
		}

		fmt.Fprintf(w, "problem %d: %s\n", i+1, problem)
		n := 0
		for s := range problem.Solutions() {
			n++
			fmt.Fprintf(w, "  %s\n", s)
		}
		if n == 0 {
			fmt.Fprintln(w, "  no solutions found")
		}
	}
	return nil
}

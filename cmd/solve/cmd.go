package solve

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/operator-framework/homatch/pkg/matching"
)

func NewSolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve <path>",
		Short: "Solves a matching problem given in a YAML problem file",
		Long: `Solves a matching problem given in a YAML problem file. For instance:

constraints:
  # P__ is a metavariable; (@ P__ a) applies it to the argument a
  - pattern: "(@ P__ a)"
    expression: "(g a a)"
  - pattern: "(∀ x , (@ Q__ x))"
    expression: "(∀ y , (h y b))"
# optional, at most this many solutions are printed
limit: 10
`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("file (%s) not found", args[0])
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, _ := cmd.Flags().GetString("config")
			cfg, err := LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			return solve(cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0], cfg)
		},
	}

	cmd.Flags().Int("limit", 0, "print at most this many solutions (0 for all)")
	cmd.Flags().Bool("trace", false, "log the progress of the search to stderr")
	cmd.Flags().String("output", OutputTable, "output format: table or plain")
	cmd.Flags().String("config", "", "configuration file (default "+DefaultConfigFile+" if present)")

	return cmd
}

func solve(out, errOut io.Writer, path string, cfg *Config) error {
	problemFile, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("error opening problem file (%s): %w", path, err)
	}
	defer problemFile.Close()

	pf, err := NewProblemFile(problemFile)
	if err != nil {
		return fmt.Errorf("error parsing problem file (%s): %w", path, err)
	}

	var options []matching.Option
	if cfg.Trace {
		handler := slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: slog.LevelDebug})
		options = append(options, matching.WithTracer(matching.LogrTracer{Logger: logr.FromSlogHandler(handler)}))
	}
	problem, err := pf.Problem(options...)
	if err != nil {
		return err
	}

	limit := cfg.Limit
	if limit == 0 {
		limit = pf.Limit()
	}

	var solutions []*matching.Solution
	for s := range problem.Solutions() {
		solutions = append(solutions, s)
		if limit > 0 && len(solutions) == limit {
			break
		}
	}
	return renderSolutions(out, solutions, cfg.Output)
}

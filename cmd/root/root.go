package root

import (
	"github.com/spf13/cobra"

	"github.com/operator-framework/homatch/cmd/demo"

	"github.com/operator-framework/homatch/cmd/solve"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "homatch",
		Short: "Homatch is a higher-order pattern matching engine",
		Long: `A higher-order pattern matching engine written in Go.
Patterns may contain metavariables (x__) and expression function
applications (@ P__ a ...); every solution binds the metavariables so
that each pattern becomes its expression.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// add sub-commands
	rootCmd.AddCommand(solve.NewSolveCommand())
	rootCmd.AddCommand(demo.NewDemoCommand())

	return rootCmd
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/rpggio/worklog/internal/output"
)

func NewDetectCmd(deps *Dependencies) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Check once whether a meeting is running",
		Long:  "Takes a single process snapshot and evaluates the recognition rules against it. Nothing is recorded.",
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := output.NewFormatter(cmd.OutOrStdout())

			d, err := deps.App.Detect(cmd.Context())
			if err != nil {
				return err
			}
			formatter.Detection(d.Match, d.RuleName, d.Processes)
			if verbose {
				formatter.Processes(d.Processes)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "also list every process in the snapshot")

	return cmd
}

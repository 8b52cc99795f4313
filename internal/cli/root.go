package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rpggio/worklog/internal/app"
)

// Opener builds the application from an optional config file path.
type Opener func(configPath string) (*app.App, error)

type Dependencies struct {
	Open Opener
	// App is set once the root command's pre-run has opened it.
	App *app.App
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "worklog",
		Short:         "Detect meetings from running applications and keep a log of them",
		Long:          "worklog watches running processes for conferencing applications, tracks each meeting from start to confirmed end, and stores finished meetings in a local SQLite database. It serves the tracker over MCP and offers commands for inspecting rules and the meeting log.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if deps.Open == nil {
				return errors.New("no application opener configured")
			}
			a, err := deps.Open(configPath)
			if err != nil {
				return err
			}
			deps.App = a
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if deps.App == nil {
				return nil
			}
			err := deps.App.Close()
			deps.App = nil
			return err
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $WORKLOG_CONFIG_PATH)")

	rootCmd.AddCommand(NewServeCmd(deps))
	rootCmd.AddCommand(NewDetectCmd(deps))
	rootCmd.AddCommand(NewRulesCmd(deps))
	rootCmd.AddCommand(NewMeetingsCmd(deps))
	rootCmd.AddCommand(NewActivityCmd(deps))

	return rootCmd
}

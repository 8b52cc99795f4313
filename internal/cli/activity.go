package cli

import (
	"github.com/spf13/cobra"

	"github.com/rpggio/worklog/internal/domain/activity"
	"github.com/rpggio/worklog/internal/output"
)

func NewActivityCmd(deps *Dependencies) *cobra.Command {
	var (
		limit     int
		typ       string
		meetingID string
	)

	cmd := &cobra.Command{
		Use:   "activity",
		Short: "Show recent meeting lifecycle activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := activity.ListActivityOptions{Limit: limit}
			if typ != "" {
				t := activity.ActivityType(typ)
				opts.ActivityType = &t
			}
			if meetingID != "" {
				opts.MeetingID = &meetingID
			}

			entries, err := deps.App.Activity.GetRecentActivity(cmd.Context(), opts)
			if err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).Activity(entries)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", activity.DefaultListLimit, "maximum number of entries")
	cmd.Flags().StringVar(&typ, "type", "", "filter by activity type, e.g. meeting_ended")
	cmd.Flags().StringVar(&meetingID, "meeting", "", "filter by meeting id")

	return cmd
}

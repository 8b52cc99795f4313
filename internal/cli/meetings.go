package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rpggio/worklog/internal/domain/meeting"
	"github.com/rpggio/worklog/internal/output"
)

func NewMeetingsCmd(deps *Dependencies) *cobra.Command {
	var (
		since string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "meetings",
		Short: "List logged meetings, newest first",
		Example: `  worklog meetings --since 24h
  worklog meetings --since 2026-03-01`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := deps.App
			opts := meeting.ListOptions{Limit: limit}
			if since != "" {
				t, err := parseSince(since, a.Clock.Now())
				if err != nil {
					return err
				}
				opts.Since = &t
			}

			meetings, err := a.Tracker.GetEndedMeetings(cmd.Context(), opts)
			if err != nil {
				return err
			}
			output.NewFormatter(cmd.OutOrStdout()).EndedMeetings(meetings)
			return nil
		},
	}

	cmd.Flags().StringVar(&since, "since", "", "only meetings ending after this duration ago (24h) or date (2006-01-02)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "maximum number of meetings")

	return cmd
}

// parseSince accepts a duration before now, a local date or an RFC 3339
// timestamp.
func parseSince(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(-d), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since %q: want a duration, a date or an RFC 3339 time", s)
}

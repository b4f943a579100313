package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"kuenkele/timetrack/internal/client"
	"kuenkele/timetrack/internal/models"
	"kuenkele/timetrack/internal/timeutil"
)

// Layouts accepted for times on the command line, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// parseTime reads a command line time. Times without an offset are taken
// in loc.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q, use YYYY-MM-DD HH:MM[:SS] or RFC 3339", s)
}

func newActivitiesCmd(a *app) *cobra.Command {
	var day, from, to string

	cmd := &cobra.Command{
		Use:     "activities",
		Aliases: []string{"a"},
		Short:   "Show the activities of a day or a range of days",
		Long: `Show the activities of one day with work, break and overtime totals,
or all activities of an inclusive range of days.

Examples:
  timetrack activities                                   # Today
  timetrack activities --day 2024-03-01
  timetrack activities --from 2024-03-01 --to 2024-03-07`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			now := a.now()

			if from != "" || to != "" {
				if from == "" {
					return errors.New("--to needs --from")
				}
				if to == "" {
					to = from
				}
				activities, err := a.client.Activities(cmd.Context(), from, to)
				if err != nil {
					return describe(err)
				}
				fmt.Fprint(a.out, renderActivities(activities, a.location, now))
				return nil
			}

			if day == "" {
				day = timeutil.Today(now, a.location)
			}
			daily, err := a.client.DailyActivities(cmd.Context(), day)
			if err != nil {
				return describe(err)
			}
			fmt.Fprint(a.out, renderDaily(daily, a.location, now))
			return nil
		},
	}

	cmd.Flags().StringVarP(&day, "day", "d", "", "Day as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&from, "from", "", "First day of a range")
	cmd.Flags().StringVar(&to, "to", "", "Last day of a range (default --from)")
	cmd.MarkFlagsMutuallyExclusive("day", "from")
	cmd.MarkFlagsMutuallyExclusive("day", "to")

	cmd.AddCommand(newActivitiesEditCmd(a))

	return cmd
}

func newActivitiesEditCmd(a *app) *cobra.Command {
	var project, start, end string

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Change the project or times of an activity",
		Long: `Rewrite an activity. Times without an offset use the configured time zone.
Leave out --end only for the activity that is still running.

Example:
  timetrack activities edit 42 --project web --start "2024-03-01 09:00" --end "2024-03-01 12:30"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil || id <= 0 {
				return fmt.Errorf("invalid activity id %q", args[0])
			}

			change := client.ActivityChange{ProjectName: project}
			change.StartedAt, err = parseTime(start, a.location)
			if err != nil {
				return err
			}
			if end != "" {
				endedAt, err := parseTime(end, a.location)
				if err != nil {
					return err
				}
				change.EndedAt = &endedAt
			}

			activity, err := a.client.ChangeActivity(cmd.Context(), id, change)
			if err != nil {
				return describe(err)
			}

			fmt.Fprintln(a.out, activityTable(models.Activities{activity}, a.location, a.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&project, "project", "", "Project the activity belongs to")
	cmd.Flags().StringVar(&start, "start", "", "Start time")
	cmd.Flags().StringVar(&end, "end", "", "End time")
	cmd.MarkFlagRequired("project")
	cmd.MarkFlagRequired("start")

	return cmd
}

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/store"
	"taskflow/internal/summary"
	"taskflow/internal/xp"
)

func newDashboardCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show productivity stats, XP and badges",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().withStore(cmd.Context(), func(st *store.Store) error {
				a := app()
				now := time.Now()
				stats := summary.Build(st.Tasks(), st.Categories(), now)

				fmt.Fprintf(a.out, "Total %d · Pending %d · Completed %d · Overdue %d\n",
					stats.Total, stats.Pending, stats.Completed, stats.Overdue)
				fmt.Fprintf(a.out, "Completion rate: %d%%\n\n", stats.CompletionRate)

				if profile := st.Profile(); profile != nil {
					fmt.Fprintf(a.out, "Level %d · %d XP (%d/%d to next level)\n",
						profile.Level, profile.XP, xp.Progress(profile.XP), xp.PerLevel)
					for _, badge := range xp.Badges(profile.XP) {
						mark := " "
						if badge.Earned {
							mark = "x"
						}
						fmt.Fprintf(a.out, "  [%s] %s %s · %s\n", mark, badge.Icon, badge.Name, badge.Desc)
					}
					fmt.Fprintln(a.out)
				}

				fmt.Fprintln(a.out, "Last 7 days:")
				for _, day := range stats.Activity {
					fmt.Fprintf(a.out, "  %s %s %d\n", day.Label, strings.Repeat("#", day.Count), day.Count)
				}

				if len(stats.ByCategory) > 0 {
					fmt.Fprintln(a.out, "\nBy category:")
					for _, c := range stats.ByCategory {
						fmt.Fprintf(a.out, "  %s: %d\n", c.Name, c.Count)
					}
				}
				return nil
			})
		},
	}
}

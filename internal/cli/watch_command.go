package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"taskflow/internal/model"
	"taskflow/internal/schedule"
	"taskflow/internal/store"
	"taskflow/internal/summary"
)

// newWatchCmd keeps a store open, prints live change events as they
// arrive and a periodic daily summary, until interrupted.
func newWatchCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Follow live changes and periodic summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				scheduler := schedule.New(time.Local)
				if _, err := scheduler.Every(a.cfg.ReminderInterval, func() {
					fmt.Fprintln(a.out, summary.Daily(st.Tasks(), st.Categories(), st.Profile(), time.Now()))
				}); err != nil {
					return fmt.Errorf("schedule summary: %w", err)
				}
				scheduler.Start()
				defer scheduler.Stop()

				fmt.Fprintln(a.out, summary.Daily(st.Tasks(), st.Categories(), st.Profile(), time.Now()))
				fmt.Fprintln(a.out, "\nWatching for changes. Ctrl-C to stop.")

				changes := st.Watch(cmd.Context())
				for {
					select {
					case <-cmd.Context().Done():
						return nil
					case change, ok := <-changes:
						if !ok {
							return nil
						}
						fmt.Fprintln(a.out, describeChange(st, change))
					}
				}
			})
		},
	}
}

// describeChange renders one applied change for the watch log.
func describeChange(st *store.Store, change model.TaskChange) string {
	switch change.Kind {
	case model.ChangeInsert:
		if change.Task != nil {
			return fmt.Sprintf("Added: %s", change.Task.Title)
		}
		return fmt.Sprintf("Added: %s", change.ID)
	case model.ChangeUpdate:
		title := change.ID
		for _, t := range st.Tasks() {
			if t.ID == change.ID {
				title = t.Title
				break
			}
		}
		if change.Patch != nil && change.Patch.Completed != nil {
			if *change.Patch.Completed {
				return fmt.Sprintf("Completed: %s", title)
			}
			return fmt.Sprintf("Reopened: %s", title)
		}
		return fmt.Sprintf("Updated: %s", title)
	case model.ChangeDelete:
		return fmt.Sprintf("Removed: %s", change.ID)
	default:
		return string(change.Kind)
	}
}

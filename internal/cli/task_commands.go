package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskflow/internal/model"
	"taskflow/internal/store"
)

func newTaskCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks",
	}
	cmd.AddCommand(
		newTaskAddCmd(app),
		newTaskListCmd(app),
		newTaskEditCmd(app),
		newTaskToggleCmd(app),
		newTaskDeleteCmd(app),
	)
	return cmd
}

func newTaskAddCmd(app func() *App) *cobra.Command {
	var (
		description string
		priority    string
		categoryID  string
		due         string
	)

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := model.NewTaskInput{Title: args[0], Priority: model.Priority(priority)}
			if description != "" {
				input.Description = &description
			}
			if categoryID != "" {
				input.CategoryID = &categoryID
			}
			if due != "" {
				d, err := model.ParseDate(due)
				if err != nil {
					return err
				}
				input.DueDate = &d
			}

			return app().withStore(cmd.Context(), func(st *store.Store) error {
				task, err := st.AddTask(cmd.Context(), input)
				if err != nil {
					return err
				}
				fmt.Fprintf(app().out, "Created %s (%s)\n", task.Title, task.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "longer description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high (default medium)")
	cmd.Flags().StringVarP(&categoryID, "category", "c", "", "category id")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	return cmd
}

func newTaskListCmd(app func() *App) *cobra.Command {
	var (
		status   string
		priority string
		category string
		search   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().withStore(cmd.Context(), func(st *store.Store) error {
				tasks := st.Filtered(store.Filter{
					Status:     store.Status(status),
					Priority:   model.Priority(priority),
					CategoryID: category,
					Search:     search,
				})
				printTasks(app(), tasks)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "all", "all, pending or completed")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "filter by priority")
	cmd.Flags().StringVarP(&category, "category", "c", "", "filter by category id")
	cmd.Flags().StringVarP(&search, "search", "q", "", "match title or description")
	return cmd
}

func newTaskEditCmd(app func() *App) *cobra.Command {
	var (
		title         string
		description   string
		priority      string
		categoryID    string
		due           string
		clearCategory bool
		clearDue      bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Update fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch model.TaskPatch
			if cmd.Flags().Changed("title") {
				patch.Title = &title
			}
			if cmd.Flags().Changed("description") {
				patch.Description = &description
			}
			if cmd.Flags().Changed("priority") {
				p := model.Priority(priority)
				patch.Priority = &p
			}
			if cmd.Flags().Changed("category") {
				patch.CategoryID = &categoryID
			}
			if cmd.Flags().Changed("due") {
				d, err := model.ParseDate(due)
				if err != nil {
					return err
				}
				patch.DueDate = &d
			}
			patch.ClearCategory = clearCategory
			patch.ClearDueDate = clearDue

			return app().withStore(cmd.Context(), func(st *store.Store) error {
				if err := st.UpdateTask(cmd.Context(), args[0], patch); err != nil {
					return err
				}
				fmt.Fprintln(app().out, "Updated")
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "new priority")
	cmd.Flags().StringVarP(&categoryID, "category", "c", "", "new category id")
	cmd.Flags().StringVar(&due, "due", "", "new due date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&clearCategory, "clear-category", false, "make the task uncategorized")
	cmd.Flags().BoolVar(&clearDue, "clear-due", false, "remove the due date")
	return cmd
}

func newTaskToggleCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip completion and adjust XP",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().withStore(cmd.Context(), func(st *store.Store) error {
				var target *model.Task
				for _, t := range st.Tasks() {
					if t.ID == args[0] {
						task := t
						target = &task
						break
					}
				}
				if target == nil {
					return fmt.Errorf("no task with id %s", args[0])
				}
				if err := st.ToggleComplete(cmd.Context(), *target); err != nil {
					return err
				}
				if profile := st.Profile(); profile != nil {
					fmt.Fprintf(app().out, "Level %d · %d XP\n", profile.Level, profile.XP)
				}
				return nil
			})
		},
	}
}

func newTaskDeleteCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().withStore(cmd.Context(), func(st *store.Store) error {
				if err := st.DeleteTask(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(app().out, "Deleted")
				return nil
			})
		},
	}
}

func printTasks(a *App, tasks []model.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(a.out, "No tasks.")
		return
	}
	w := tabwriter.NewWriter(a.out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tPRI\tTITLE\tCATEGORY\tDUE")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		category := ""
		if t.Category != nil {
			category = t.Category.Name
		}
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\t%s\t%s\n", t.ID, done, t.Priority, t.Title, category, due)
	}
	_ = w.Flush()
}

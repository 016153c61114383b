package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"taskflow/internal/model"
	"taskflow/internal/store"
)

func newCategoryCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "category",
		Aliases: []string{"cat"},
		Short:   "Manage categories",
	}
	cmd.AddCommand(
		newCategoryAddCmd(app),
		newCategoryListCmd(app),
		newCategoryPresetsCmd(app),
		newCategoryDeleteCmd(app),
	)
	return cmd
}

func newCategoryAddCmd(app func() *App) *cobra.Command {
	var color string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Create a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().withStore(cmd.Context(), func(st *store.Store) error {
				category, err := st.AddCategory(cmd.Context(), args[0], color)
				if err != nil {
					return err
				}
				fmt.Fprintf(app().out, "Created %s (%s)\n", category.Name, category.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&color, "color", "c", model.PresetColors[0], "display color, hex")
	return cmd
}

func newCategoryListCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List categories with task counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().withStore(cmd.Context(), func(st *store.Store) error {
				categories := st.Categories()
				if len(categories) == 0 {
					fmt.Fprintln(app().out, "No categories.")
					return nil
				}
				counts := make(map[string]int)
				for _, t := range st.Tasks() {
					if t.CategoryID != nil {
						counts[*t.CategoryID]++
					}
				}
				w := tabwriter.NewWriter(app().out, 2, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tCOLOR\tTASKS")
				for _, c := range categories {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", c.ID, c.Name, c.Color, counts[c.ID])
				}
				return w.Flush()
			})
		},
	}
}

// newCategoryPresetsCmd adds the ready-made categories, skipping any whose
// name already exists (case-insensitive). The duplicate check lives here,
// not in the store.
func newCategoryPresetsCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "Add the default categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().withStore(cmd.Context(), func(st *store.Store) error {
				for _, preset := range model.DefaultCategories {
					if model.HasCategoryNamed(st.Categories(), preset.Name) {
						fmt.Fprintf(app().out, "%s already exists, skipping\n", preset.Name)
						continue
					}
					if _, err := st.AddCategory(cmd.Context(), preset.Name, preset.Color); err != nil {
						return err
					}
					fmt.Fprintf(app().out, "Added %s\n", preset.Name)
				}
				return nil
			})
		},
	}
}

func newCategoryDeleteCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a category; its tasks become uncategorized",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().withStore(cmd.Context(), func(st *store.Store) error {
				if err := st.DeleteCategory(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintln(app().out, "Deleted")
				return nil
			})
		},
	}
}

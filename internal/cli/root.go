package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"taskflow/internal/config"
	"taskflow/internal/logger"
)

// Execute builds the command tree and runs it.
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:           "taskflow",
		Short:         "Task manager with categories, priorities and XP",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	level := zerolog.WarnLevel
	cobra.OnInitialize(func() {
		if verbose {
			level = zerolog.DebugLevel
		}
	})

	// Config load is deferred until a command actually runs so that
	// `taskflow --help` works in an unconfigured environment.
	var app *App
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		log := logger.New(level)
		cfg, err := config.Load(log)
		if err != nil {
			return err
		}
		app = NewApp(cfg, log, cmd.OutOrStdout())
		return nil
	}
	root.PersistentPostRun = func(*cobra.Command, []string) {
		if app != nil {
			app.close()
		}
	}

	appRef := func() *App { return app }
	root.AddCommand(
		newLoginCmd(appRef),
		newRegisterCmd(appRef),
		newLogoutCmd(appRef),
		newTaskCmd(appRef),
		newCategoryCmd(appRef),
		newDashboardCmd(appRef),
		newWatchCmd(appRef),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, friendly(err))
		return err
	}
	return nil
}

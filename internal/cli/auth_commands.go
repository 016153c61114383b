package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"taskflow/internal/session"
)

func newLoginCmd(app func() *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and cache the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			be, err := a.backend()
			if err != nil {
				return err
			}
			sess, err := be.SignIn(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			cache, err := a.sessions()
			if err != nil {
				return err
			}
			if err := cache.Save(sess); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", sess.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newRegisterCmd(app func() *App) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			be, err := a.backend()
			if err != nil {
				return err
			}
			sess, err := be.SignUp(cmd.Context(), email, password)
			if err != nil {
				return err
			}
			cache, err := a.sessions()
			if err != nil {
				return err
			}
			if err := cache.Save(sess); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Welcome, %s\n", sess.Email)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (6+ characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLogoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and clear the cached session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			cache, err := a.sessions()
			if err != nil {
				return err
			}
			sess, err := cache.Load()
			if err != nil && !errors.Is(err, session.ErrNoSession) {
				return err
			}
			if sess != nil {
				be, err := a.backend()
				if err != nil {
					return err
				}
				if err := be.SignOut(cmd.Context(), sess); err != nil {
					a.log.Warn().Err(err).Msg("remote sign-out failed")
				}
			}
			if err := cache.Clear(); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

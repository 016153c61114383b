// Package cli implements the cobra command tree of the taskflow binary.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"taskflow/internal/backend"
	"taskflow/internal/backend/local"
	"taskflow/internal/backend/rest"
	"taskflow/internal/config"
	"taskflow/internal/session"
	"taskflow/internal/store"
)

// App carries the shared dependencies of all commands.
type App struct {
	cfg config.Config
	log zerolog.Logger
	out io.Writer

	// backend is lazily constructed so commands that never reach it
	// (help, completion) do not open a database.
	be      backend.Backend
	beClose func() error
}

func NewApp(cfg config.Config, log zerolog.Logger, out io.Writer) *App {
	return &App{cfg: cfg, log: log, out: out}
}

// backend returns the configured backend implementation.
func (a *App) backend() (backend.Backend, error) {
	if a.be != nil {
		return a.be, nil
	}
	switch a.cfg.Backend {
	case "rest":
		a.be = rest.New(a.cfg.BackendURL, a.cfg.BackendKey, a.log)
		a.beClose = func() error { return nil }
	default:
		b, err := local.New(a.cfg.DatabaseURL, a.cfg.JWTSecret)
		if err != nil {
			return nil, err
		}
		a.be = b
		a.beClose = b.Close
	}
	return a.be, nil
}

func (a *App) close() {
	if a.beClose != nil {
		if err := a.beClose(); err != nil {
			a.log.Warn().Err(err).Msg("closing backend")
		}
	}
}

func (a *App) sessions() (*session.Cache, error) {
	return session.NewCache(a.cfg.SessionFile)
}

// resume restores the cached session and points the backend at it.
func (a *App) resume(ctx context.Context) (*backend.Session, error) {
	cache, err := a.sessions()
	if err != nil {
		return nil, err
	}
	sess, err := cache.Load()
	if err != nil {
		return nil, err
	}

	be, err := a.backend()
	if err != nil {
		return nil, err
	}
	switch b := be.(type) {
	case *local.Backend:
		// The local backend validates the token against its user table.
		sess, err = b.Resume(ctx, sess.AccessToken)
		if err != nil {
			return nil, err
		}
	case *rest.Backend:
		b.UseSession(sess)
	}
	return sess, nil
}

// withStore resumes the session, opens the task store around it, runs fn
// and tears everything down again.
func (a *App) withStore(ctx context.Context, fn func(*store.Store) error) error {
	sess, err := a.resume(ctx)
	if err != nil {
		return err
	}
	be, err := a.backend()
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, be, sess.UserID, a.log)
	if err != nil {
		return err
	}
	defer st.Close()

	return fn(st)
}

// friendly maps typed errors to display-ready messages.
func friendly(err error) string {
	switch {
	case errors.Is(err, backend.ErrInvalidCredentials):
		return "Incorrect email or password."
	case errors.Is(err, backend.ErrEmailTaken):
		return "An account with this email already exists."
	case errors.Is(err, session.ErrNoSession), errors.Is(err, backend.ErrUnauthorized):
		return "Not signed in. Run `taskflow login` first."
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

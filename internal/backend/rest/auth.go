package rest

import (
	"context"
	"fmt"
	"net/http"

	"taskflow/internal/backend"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	User        struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

type authError struct {
	Message string `json:"msg"`
}

// SignIn exchanges credentials for a session via the password grant.
func (b *Backend) SignIn(ctx context.Context, email, password string) (*backend.Session, error) {
	var out authResponse
	resp, err := b.http.R().
		SetContext(ctx).
		SetQueryParam("grant_type", "password").
		SetBody(credentials{Email: email, Password: password}).
		SetResult(&out).
		Post("/auth/v1/token")
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusUnauthorized {
		return nil, backend.ErrInvalidCredentials
	}
	if resp.IsError() {
		return nil, statusErr("sign in", resp)
	}

	session := &backend.Session{UserID: out.User.ID, Email: out.User.Email, AccessToken: out.AccessToken}
	b.UseSession(session)
	return session, nil
}

// SignUp registers a new account. The provider message is surfaced on
// conflict so the caller can display it.
func (b *Backend) SignUp(ctx context.Context, email, password string) (*backend.Session, error) {
	var out authResponse
	var apiErr authError
	resp, err := b.http.R().
		SetContext(ctx).
		SetBody(credentials{Email: email, Password: password}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/auth/v1/signup")
	if err != nil {
		return nil, fmt.Errorf("sign up: %w", err)
	}
	if resp.StatusCode() == http.StatusConflict || resp.StatusCode() == http.StatusUnprocessableEntity {
		return nil, backend.ErrEmailTaken
	}
	if resp.IsError() {
		if apiErr.Message != "" {
			return nil, fmt.Errorf("sign up: %s", apiErr.Message)
		}
		return nil, statusErr("sign up", resp)
	}

	session := &backend.Session{UserID: out.User.ID, Email: out.User.Email, AccessToken: out.AccessToken}
	b.UseSession(session)
	return session, nil
}

// SignOut revokes the session token.
func (b *Backend) SignOut(ctx context.Context, session *backend.Session) error {
	resp, err := b.http.R().
		SetContext(ctx).
		SetAuthToken(session.AccessToken).
		Post("/auth/v1/logout")
	if err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	if resp.IsError() {
		return statusErr("sign out", resp)
	}
	b.token = ""
	return nil
}

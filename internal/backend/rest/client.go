// Package rest implements the backend contracts against a remote service
// speaking a PostgREST-style API: equality filters and ordering in query
// parameters, a password-grant auth endpoint, and a server-sent-event
// change feed per table.
package rest

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"taskflow/internal/backend"
)

// Backend is the remote implementation of backend.Backend.
type Backend struct {
	http    *resty.Client
	stream  *resty.Client
	baseURL string
	apiKey  string
	token   string
	log     zerolog.Logger
}

// New builds a client for the service at baseURL authenticated with the
// project API key. Per-user authorization is added by UseSession after
// sign-in. The change feed uses a second client without a request
// timeout, since its connections stay open for the whole session.
func New(baseURL, apiKey string, log zerolog.Logger) *Backend {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(30 * time.Second).
		SetHeader("apikey", apiKey).
		SetHeader("Content-Type", "application/json")

	stream := resty.New().
		SetBaseURL(baseURL).
		SetHeader("apikey", apiKey)

	return &Backend{http: http, stream: stream, baseURL: baseURL, apiKey: apiKey, log: log}
}

// UseSession attaches the session's access token to subsequent requests.
func (b *Backend) UseSession(session *backend.Session) {
	b.token = session.AccessToken
	b.http.SetAuthToken(session.AccessToken)
	b.stream.SetAuthToken(session.AccessToken)
}

var _ backend.Backend = (*Backend)(nil)

// statusErr converts a non-2xx response into a typed error.
func statusErr(op string, resp *resty.Response) error {
	switch resp.StatusCode() {
	case 401, 403:
		return fmt.Errorf("%s: %w", op, backend.ErrUnauthorized)
	case 404, 406:
		return fmt.Errorf("%s: %w", op, backend.ErrNotFound)
	default:
		return fmt.Errorf("%s: status %d", op, resp.StatusCode())
	}
}

// Package auth signs users in against the remote backend. No credentials are
// verified or stored locally; the backend issues a bearer token that the
// session carries for every subsequent request.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/docudist/docudist/internal/backend"
	"github.com/docudist/docudist/internal/shared"
)

// Service talks to the backend's auth endpoints.
type Service struct {
	client *backend.Client
	logger *slog.Logger
}

// NewService constructs a Service.
func NewService(client *backend.Client, logger *slog.Logger) *Service {
	return &Service{client: client, logger: logger}
}

type loginResult struct {
	Token string         `json:"token"`
	User  shared.Profile `json:"user"`
}

// Login exchanges credentials for a bearer token and the user profile. The
// session context is initialised from the result.
func (s *Service) Login(ctx context.Context, email, password string) (string, *shared.Profile, error) {
	result, err := backend.Create[loginResult](ctx, s.client, "", "/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		var apiErr *backend.APIError
		if errors.Is(err, backend.ErrUnauthenticated) || (errors.As(err, &apiErr) && apiErr.Semantic) {
			return "", nil, shared.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("login: %w", err)
	}
	if result.Token == "" {
		return "", nil, shared.ErrInvalidCredentials
	}
	profile := result.User
	return result.Token, &profile, nil
}

// Logout invalidates the token backend-side. Session teardown happens at the
// caller regardless of the outcome here.
func (s *Service) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if _, err := backend.Create[struct{}](ctx, s.client, token, "/logout", nil); err != nil {
		s.logger.Warn("backend logout", slog.Any("error", err))
	}
}

// RefreshProfile refetches the profile wholesale, implementing
// authz.ProfileRefresher for protected-area entry.
func (s *Service) RefreshProfile(ctx context.Context, token string) (*shared.Profile, error) {
	profile, err := backend.Fetch[shared.Profile](ctx, s.client, token, "/me")
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

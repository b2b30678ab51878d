package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/erp/posconsole/internal/infrastructure/apiclient"
	"go.uber.org/zap"
)

const (
	loginPath  = "/auth/login"
	logoutPath = "/auth/logout"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// User is the account returned by the login endpoint
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
}

// LoginResult is the data field of the login response. Backends return the
// token either as token or as access_token.
type LoginResult struct {
	Token       string `json:"token"`
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}

// BearerToken returns whichever token field was set
func (r LoginResult) BearerToken() string {
	if r.Token != "" {
		return r.Token
	}
	return r.AccessToken
}

// Session performs login and logout against the backend
type Session struct {
	client *apiclient.Client
	store  *TokenStore
	log    *zap.Logger
}

// NewSession creates a session bound to a client and token store
func NewSession(client *apiclient.Client, store *TokenStore, log *zap.Logger) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	return &Session{client: client, store: store, log: log.Named("session")}
}

// Login authenticates and stores the returned token
func (s *Session) Login(ctx context.Context, username, password string) (User, error) {
	if username == "" || password == "" {
		return User{}, errors.New("username and password are required")
	}
	// a stale token must not be sent with the login request
	if err := s.store.Clear(); err != nil {
		s.log.Warn("clearing previous token", zap.Error(err))
	}
	res, err := apiclient.Send[LoginResult](ctx, s.client, http.MethodPost, loginPath, LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return User{}, fmt.Errorf("login: %w", err)
	}
	token := res.BearerToken()
	if token == "" {
		// some backends only set the token cookie
		if cookieToken, src := s.store.Resolve(); src == SourceCookie {
			token = cookieToken
		}
	}
	if token == "" {
		return User{}, errors.New("login: response carried no token")
	}
	if err := s.store.Set(token); err != nil {
		return User{}, fmt.Errorf("storing token: %w", err)
	}
	if err := s.store.SaveCookies(); err != nil {
		s.log.Warn("saving cookies", zap.Error(err))
	}
	s.log.Info("logged in", zap.String("username", res.User.Username))
	return res.User, nil
}

// Logout notifies the backend (best effort) and clears the stored token
func (s *Session) Logout(ctx context.Context) error {
	if s.store.Token() != "" {
		if err := apiclient.Exec(ctx, s.client, http.MethodPost, logoutPath, nil); err != nil {
			s.log.Warn("logout request failed, clearing local token anyway", zap.Error(err))
		}
	}
	return s.store.Clear()
}

// Package auth keeps the bearer token used by every API request. The token is
// resolved in a fixed order (explicit in-memory value, persistent token file,
// then the token cookie set by the backend) and cleared on logout or when the
// backend rejects it.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// TokenCookieName is the cookie the backend uses to carry the token
const TokenCookieName = "token"

// Source tells where a token was found
type Source string

const (
	SourceNone   Source = "none"
	SourceMemory Source = "memory"
	SourceFile   Source = "file"
	SourceCookie Source = "cookie"
)

// StoreConfig configures a TokenStore
type StoreConfig struct {
	TokenFile  string         // persistent token storage; empty disables it
	CookieFile string         // persisted cookies for the API host; empty disables it
	Jar        http.CookieJar // jar shared with the HTTP client
	APIURL     *url.URL       // host whose cookies are consulted
	Logger     *zap.Logger
	Now        func() time.Time
}

// TokenStore resolves, stores and clears the bearer token
type TokenStore struct {
	mu     sync.RWMutex
	memory string
	cfg    StoreConfig
	log    *zap.Logger
}

// NewTokenStore creates a token store and loads persisted cookies into the jar
func NewTokenStore(cfg StoreConfig) (*TokenStore, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	s := &TokenStore{cfg: cfg, log: cfg.Logger.Named("auth")}
	if err := s.loadCookies(); err != nil {
		return nil, err
	}
	return s, nil
}

// Token returns the current token or "" when none is usable
func (s *TokenStore) Token() string {
	token, _ := s.Resolve()
	return token
}

// Resolve returns the first usable token and where it came from.
// Expired JWTs are skipped as if absent.
func (s *TokenStore) Resolve() (string, Source) {
	s.mu.RLock()
	memory := s.memory
	s.mu.RUnlock()

	candidates := []struct {
		source Source
		load   func() string
	}{
		{SourceMemory, func() string { return memory }},
		{SourceFile, s.readFile},
		{SourceCookie, s.readCookie},
	}
	for _, c := range candidates {
		token := c.load()
		if token == "" {
			continue
		}
		if s.expired(token) {
			s.log.Debug("skipping expired token", zap.String("source", string(c.source)))
			continue
		}
		return token, c.source
	}
	return "", SourceNone
}

// Set stores token in memory and in the token file
func (s *TokenStore) Set(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token is empty")
	}
	s.mu.Lock()
	s.memory = token
	s.mu.Unlock()

	if s.cfg.TokenFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.TokenFile), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}
	if err := os.WriteFile(s.cfg.TokenFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}

// Clear wipes the token from memory, the token file and the cookie jar
func (s *TokenStore) Clear() error {
	s.mu.Lock()
	s.memory = ""
	s.mu.Unlock()

	var errs []error
	if s.cfg.TokenFile != "" {
		if err := os.Remove(s.cfg.TokenFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("removing token file: %w", err))
		}
	}
	if s.cfg.Jar != nil && s.cfg.APIURL != nil {
		paths := cookiePaths(s.cfg.APIURL.Path)
		expired := make([]*http.Cookie, 0, len(paths))
		for _, p := range paths {
			expired = append(expired, &http.Cookie{Name: TokenCookieName, Value: "", Path: p, MaxAge: -1})
		}
		s.cfg.Jar.SetCookies(s.cfg.APIURL, expired)
	}
	if err := s.SaveCookies(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// cookiePaths lists the paths a token cookie for apiPath may be scoped to:
// the root, every prefix of apiPath, and the auth directory a login response
// defaults to when it sets no Path
func cookiePaths(apiPath string) []string {
	paths := []string{"/"}
	dir := ""
	for _, seg := range strings.Split(strings.Trim(apiPath, "/"), "/") {
		if seg == "" {
			continue
		}
		dir += "/" + seg
		paths = append(paths, dir)
	}
	return append(paths, dir+"/auth")
}

// Expiry returns the expiry of the current token, if it is a JWT with an exp claim
func (s *TokenStore) Expiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}
	return TokenExpiry(token)
}

func (s *TokenStore) expired(token string) bool {
	exp, ok := TokenExpiry(token)
	return ok && !s.cfg.Now().Before(exp)
}

func (s *TokenStore) readFile() string {
	if s.cfg.TokenFile == "" {
		return ""
	}
	data, err := os.ReadFile(s.cfg.TokenFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.log.Warn("reading token file", zap.Error(err))
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

func (s *TokenStore) readCookie() string {
	if s.cfg.Jar == nil || s.cfg.APIURL == nil {
		return ""
	}
	for _, c := range s.cfg.Jar.Cookies(s.cfg.APIURL) {
		if c.Name == TokenCookieName {
			return c.Value
		}
	}
	return ""
}

type persistedCookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SaveCookies writes the jar's cookies for the API host to the cookie file
func (s *TokenStore) SaveCookies() error {
	if s.cfg.CookieFile == "" || s.cfg.Jar == nil || s.cfg.APIURL == nil {
		return nil
	}
	var cookies []persistedCookie
	for _, c := range s.cfg.Jar.Cookies(s.cfg.APIURL) {
		cookies = append(cookies, persistedCookie{Name: c.Name, Value: c.Value})
	}
	if len(cookies) == 0 {
		if err := os.Remove(s.cfg.CookieFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing cookie file: %w", err)
		}
		return nil
	}
	data, err := json.Marshal(cookies)
	if err != nil {
		return fmt.Errorf("encoding cookies: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.CookieFile), 0o700); err != nil {
		return fmt.Errorf("creating cookie directory: %w", err)
	}
	if err := os.WriteFile(s.cfg.CookieFile, data, 0o600); err != nil {
		return fmt.Errorf("writing cookie file: %w", err)
	}
	return nil
}

func (s *TokenStore) loadCookies() error {
	if s.cfg.CookieFile == "" || s.cfg.Jar == nil || s.cfg.APIURL == nil {
		return nil
	}
	data, err := os.ReadFile(s.cfg.CookieFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading cookie file: %w", err)
	}
	var cookies []persistedCookie
	if err := json.Unmarshal(data, &cookies); err != nil {
		s.log.Warn("ignoring corrupt cookie file", zap.String("path", s.cfg.CookieFile), zap.Error(err))
		return nil
	}
	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		httpCookies = append(httpCookies, &http.Cookie{Name: c.Name, Value: c.Value, Path: "/"})
	}
	s.cfg.Jar.SetCookies(s.cfg.APIURL, httpCookies)
	return nil
}

// TokenExpiry reads the exp claim of a JWT without verifying its signature.
// The client cannot verify tokens; the backend remains the authority.
func TokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenSubject reads the sub claim of a JWT without verifying its signature
func TokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, _ := claims.GetSubject()
	return sub
}

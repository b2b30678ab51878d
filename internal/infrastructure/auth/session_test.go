package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"github.com/erp/posconsole/internal/infrastructure/apiclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T, handler http.HandlerFunc) (*Session, *TokenStore) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	apiURL, _ := url.Parse(server.URL)
	store, err := NewTokenStore(StoreConfig{TokenFile: filepath.Join(t.TempDir(), "token"), APIURL: apiURL})
	require.NoError(t, err)
	client, err := apiclient.New(apiclient.Config{BaseURL: server.URL, Timeout: 5 * time.Second},
		apiclient.WithTokenSource(store))
	require.NoError(t, err)
	return NewSession(client, store, nil), store
}

func TestSession_Login(t *testing.T) {
	token := signToken(t, "1", time.Now().Add(time.Hour))
	session, store := newSession(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var req LoginRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"success":false,"message":"Sai tên đăng nhập hoặc mật khẩu"}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]any{"token": token, "user": map[string]any{"id": "1", "username": req.Username}},
		})
	})

	user, err := session.Login(context.Background(), "thu_ngan", "secret")
	require.NoError(t, err)
	assert.Equal(t, "thu_ngan", user.Username)
	assert.Equal(t, token, store.Token())

	_, err = session.Login(context.Background(), "thu_ngan", "wrong")
	require.Error(t, err)
	var apiErr *apiclient.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Sai tên đăng nhập hoặc mật khẩu", apiErr.ServerMessage())
	assert.Empty(t, store.Token(), "failed login leaves no token behind")

	_, err = session.Login(context.Background(), "", "")
	assert.Error(t, err)
}

func TestSession_LoginAccessTokenField(t *testing.T) {
	session, store := newSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"access_token":"opaque-abc"}}`))
	})

	_, err := session.Login(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "opaque-abc", store.Token())
}

func TestSession_LoginWithoutToken(t *testing.T) {
	session, _ := newSession(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{}}`))
	})
	_, err := session.Login(context.Background(), "a", "b")
	assert.ErrorContains(t, err, "no token")
}

func TestSession_Logout(t *testing.T) {
	var logoutCalls int
	session, store := newSession(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/auth/logout" {
			logoutCalls++
			assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	})

	require.NoError(t, store.Set("tok"))
	require.NoError(t, session.Logout(context.Background()), "server failure does not block logout")
	assert.Equal(t, 1, logoutCalls)
	assert.Empty(t, store.Token())

	require.NoError(t, session.Logout(context.Background()))
	assert.Equal(t, 1, logoutCalls, "no request without a token")
}

package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/hongminglow/skillpath-be/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "skillpath", time.Hour)
	token, err := tm.Generate(models.User{ID: "u1", Email: "ada@example.com", DisplayName: "Ada"})
	require.NoError(t, err)

	claims, err := tm.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "Ada", claims.Name)
}

func TestTokenRejections(t *testing.T) {
	tm := NewTokenManager("secret", "skillpath", time.Hour)
	token, err := tm.Generate(models.User{ID: "u1"})
	require.NoError(t, err)

	_, err = NewTokenManager("other-secret", "skillpath", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewTokenManager("secret", "someone-else", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokenManager("secret", "skillpath", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, err := expired.Generate(models.User{ID: "u1"})
	require.NoError(t, err)
	_, err = tm.Parse(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noSubject, err := tm.Generate(models.User{})
	require.NoError(t, err)
	_, err = tm.Parse(noSubject)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "secret1"))
	assert.False(t, CheckPassword(hash, "secret2"))
	assert.False(t, CheckPassword("", "secret1"))
}

func TestMemoryStateStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStateStore()
	now := time.Now()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Save(ctx, "st", "verifier", time.Minute))
	v, err := s.Consume(ctx, "st")
	require.NoError(t, err)
	assert.Equal(t, "verifier", v)

	_, err = s.Consume(ctx, "st")
	assert.ErrorIs(t, err, ErrUnknownState, "states are single use")

	require.NoError(t, s.Save(ctx, "late", "verifier", time.Minute))
	now = now.Add(2 * time.Minute)
	_, err = s.Consume(ctx, "late")
	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestRedisStateStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_REDIS_INTEGRATION") != "true" {
		t.Skip("set RUN_REDIS_INTEGRATION=true to run this integration test")
	}
	opts, err := redis.ParseURL(os.Getenv("REDIS_URL"))
	require.NoError(t, err)
	client := redis.NewClient(opts)
	defer client.Close()

	ctx := context.Background()
	s := NewRedisStateStore(client)
	state := "it-" + time.Now().Format("150405.000000")
	require.NoError(t, s.Save(ctx, state, "verifier", time.Minute))
	v, err := s.Consume(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "verifier", v)
	_, err = s.Consume(ctx, state)
	assert.ErrorIs(t, err, ErrUnknownState)
}

// fakeGoogle serves the token and userinfo endpoints.
func fakeGoogle(t *testing.T, profile GoogleProfile) (*httptest.Server, *url.Values) {
	t.Helper()
	var tokenForm url.Values
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		tokenForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "at-1", "token_type": "Bearer", "expires_in": 3600})
	})
	mux.HandleFunc("GET /userinfo", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(profile)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &tokenForm
}

func newTestProvider(srv *httptest.Server) *GoogleProvider {
	g := NewGoogleProvider("client-id", "client-secret", "http://localhost/auth/google/callback", NewMemoryStateStore())
	g.config.Endpoint = oauth2.Endpoint{
		AuthURL:   srv.URL + "/auth",
		TokenURL:  srv.URL + "/token",
		AuthStyle: oauth2.AuthStyleInParams,
	}
	g.userInfoURL = srv.URL + "/userinfo"
	return g
}

func TestGoogleFlow(t *testing.T) {
	srv, form := fakeGoogle(t, GoogleProfile{Subject: "g1", Email: "grace@example.com", EmailVerified: true, Name: "Grace"})
	g := newTestProvider(srv)
	ctx := context.Background()

	authURL, state, err := g.Start(ctx)
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, state, q.Get("state"))
	assert.Equal(t, "S256", q.Get("code_challenge_method"))
	assert.NotEmpty(t, q.Get("code_challenge"))
	assert.Equal(t, "client-id", q.Get("client_id"))

	profile, err := g.Complete(ctx, "code-1", state)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", profile.Email)
	assert.Equal(t, "code-1", form.Get("code"))
	assert.NotEmpty(t, form.Get("code_verifier"))

	_, err = g.Complete(ctx, "code-1", state)
	assert.ErrorIs(t, err, ErrUnknownState, "a state cannot be replayed")
}

func TestGoogleRequiresVerifiedEmail(t *testing.T) {
	srv, _ := fakeGoogle(t, GoogleProfile{Subject: "g1", Email: "grace@example.com"})
	g := newTestProvider(srv)
	ctx := context.Background()

	_, state, err := g.Start(ctx)
	require.NoError(t, err)
	_, err = g.Complete(ctx, "code-1", state)
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestGoogleDisabled(t *testing.T) {
	g := NewGoogleProvider("", "", "", NewMemoryStateStore())
	assert.Nil(t, g)
	_, _, err := g.Start(context.Background())
	assert.ErrorIs(t, err, ErrOAuthDisabled)
	_, err = g.Complete(context.Background(), "c", "s")
	assert.ErrorIs(t, err, ErrOAuthDisabled)
}

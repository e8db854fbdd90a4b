package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	stateTTL          = 10 * time.Minute
)

var (
	// ErrOAuthDisabled is returned when Google sign-in is not configured.
	ErrOAuthDisabled = errors.New("google sign-in is not configured")
	// ErrEmailNotVerified is returned for Google accounts without a verified email.
	ErrEmailNotVerified = errors.New("google account has no verified email")
)

// GoogleProfile is the subset of the OpenID userinfo response we keep.
type GoogleProfile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleProvider runs the authorization-code flow with PKCE.
type GoogleProvider struct {
	config      *oauth2.Config
	states      StateStore
	userInfoURL string
}

// NewGoogleProvider builds a provider; it returns nil when clientID is empty.
func NewGoogleProvider(clientID, clientSecret, redirectURL string, states StateStore) *GoogleProvider {
	if clientID == "" {
		return nil
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		},
		states:      states,
		userInfoURL: googleUserInfoURL,
	}
}

// Start creates a state and verifier and returns the consent URL.
func (g *GoogleProvider) Start(ctx context.Context) (url, state string, err error) {
	if g == nil {
		return "", "", ErrOAuthDisabled
	}
	state, err = randomState()
	if err != nil {
		return "", "", err
	}
	verifier := oauth2.GenerateVerifier()
	if err := g.states.Save(ctx, state, verifier, stateTTL); err != nil {
		return "", "", fmt.Errorf("save oauth state: %w", err)
	}
	url = g.config.AuthCodeURL(state, oauth2.AccessTypeOnline, oauth2.S256ChallengeOption(verifier))
	return url, state, nil
}

// Complete validates state, exchanges the code and fetches the profile.
func (g *GoogleProvider) Complete(ctx context.Context, code, state string) (GoogleProfile, error) {
	if g == nil {
		return GoogleProfile{}, ErrOAuthDisabled
	}
	verifier, err := g.states.Consume(ctx, state)
	if err != nil {
		return GoogleProfile{}, err
	}
	tok, err := g.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return GoogleProfile{}, err
	}
	resp, err := g.config.Client(ctx, tok).Do(req)
	if err != nil {
		return GoogleProfile{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return GoogleProfile{}, fmt.Errorf("userinfo status %d: %s", resp.StatusCode, body)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return GoogleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if profile.Email == "" || !profile.EmailVerified {
		return GoogleProfile{}, ErrEmailNotVerified
	}
	return profile, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/auth"
	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

const (
	minPasswordLen    = 6
	minDisplayNameLen = 3
	anonymousUser     = "Anonymous User"
)

// Accounts manages sign-up, sign-in and profile settings.
type Accounts struct {
	users storage.UserStore
	log   *zap.Logger
	env   env
}

// NewAccounts constructs the account service.
func NewAccounts(users storage.UserStore, log *zap.Logger) *Accounts {
	return &Accounts{users: users, log: log.Named("accounts"), env: defaultEnv()}
}

// Register creates a password account and counts it as the first sign-in.
func (a *Accounts) Register(ctx context.Context, email, password, displayName string) (models.User, error) {
	email = normalizeEmail(email)
	var v validator
	v.check(validEmail(email), "email", "A valid email address is required.")
	v.check(runeLen(strings.TrimSpace(password)) >= minPasswordLen, "password", "Password must be at least 6 characters long.")
	if err := v.err(); err != nil {
		return models.User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := a.newUser(email, displayName, "", models.ProviderPassword)
	user.PasswordHash = hash

	created, err := a.users.CreateUser(ctx, user)
	if err != nil {
		return models.User{}, err
	}
	return created, nil
}

// Login verifies credentials and advances the login streak.
func (a *Accounts) Login(ctx context.Context, email, password string) (models.User, error) {
	email = normalizeEmail(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return models.User{}, ErrInvalidCredentials
	}
	user, err := a.users.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return models.User{}, ErrInvalidCredentials
	}
	return a.recordLogin(ctx, user), nil
}

// SignInWithGoogle signs in the Google account, creating the user on first use.
func (a *Accounts) SignInWithGoogle(ctx context.Context, profile auth.GoogleProfile) (models.User, error) {
	email := normalizeEmail(profile.Email)
	user, err := a.users.FindUserByEmail(ctx, email)
	if err == nil {
		return a.recordLogin(ctx, user), nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.User{}, err
	}

	user = a.newUser(email, profile.Name, profile.Picture, models.ProviderGoogle)
	created, err := a.users.CreateUser(ctx, user)
	if errors.Is(err, storage.ErrAlreadyExists) {
		// Lost a race with a concurrent first sign-in.
		existing, findErr := a.users.FindUserByEmail(ctx, email)
		if findErr != nil {
			return models.User{}, findErr
		}
		return a.recordLogin(ctx, existing), nil
	}
	if err != nil {
		return models.User{}, err
	}
	a.log.Info("created user from google sign-in", zap.String("user_id", created.ID))
	return created, nil
}

// Get returns the user with its dashboard counters.
func (a *Accounts) Get(ctx context.Context, id string) (models.User, error) {
	return a.users.FindUserByID(ctx, id)
}

// UpdateSettings changes the display name.
func (a *Accounts) UpdateSettings(ctx context.Context, id, displayName string) (models.User, error) {
	displayName = strings.TrimSpace(displayName)
	if runeLen(displayName) < minDisplayNameLen {
		return models.User{}, invalid("displayName", "Display name must be at least 3 characters long.")
	}
	return a.users.UpdateDisplayName(ctx, id, displayName)
}

func (a *Accounts) newUser(email, displayName, photoURL, provider string) models.User {
	now := a.env.timestamp()
	return models.User{
		ID:            a.env.newID(),
		Email:         email,
		DisplayName:   defaultDisplayName(displayName, email),
		PhotoURL:      photoURL,
		Provider:      provider,
		ActiveStreak:  1,
		LastLoginDate: now,
		CreatedAt:     now,
	}
}

// recordLogin stores the new streak; a failure is logged and the sign-in proceeds.
func (a *Accounts) recordLogin(ctx context.Context, user models.User) models.User {
	now := a.env.timestamp()
	streak := user.NextStreak(now)
	if err := a.users.RecordLogin(ctx, user.ID, streak, now); err != nil {
		a.log.Warn("record login failed", zap.String("user_id", user.ID), zap.Error(err))
		return user
	}
	user.ActiveStreak = streak
	user.LastLoginDate = now
	return user
}

func defaultDisplayName(name, email string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return anonymousUser
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

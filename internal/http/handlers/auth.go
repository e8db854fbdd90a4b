package handlers

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/auth"
	"github.com/hongminglow/skillpath-be/internal/http/respond"
	"github.com/hongminglow/skillpath-be/internal/models"
	"github.com/hongminglow/skillpath-be/internal/models/dto"
	"github.com/hongminglow/skillpath-be/internal/service"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

// AuthHandler owns the sign-up and sign-in endpoints.
type AuthHandler struct {
	accounts *service.Accounts
	tokens   *auth.TokenManager
	google   *auth.GoogleProvider
	log      *zap.Logger
}

// NewAuthHandler constructs the handler. google may be nil when Google sign-in is off.
func NewAuthHandler(accounts *service.Accounts, tokens *auth.TokenManager, google *auth.GoogleProvider, log *zap.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, google: google, log: log.Named("auth")}
}

// Register attaches auth routes to the mux.
func (h *AuthHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /auth/register", h.handleRegister)
	mux.HandleFunc("POST /auth/login", h.handleLogin)
	mux.HandleFunc("GET /auth/google", h.handleGoogleStart)
	mux.HandleFunc("GET /auth/google/callback", h.handleGoogleCallback)
}

func (h *AuthHandler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	user, err := h.accounts.Register(r.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Error(w, http.StatusConflict, "An account with this email already exists.")
			return
		}
		writeError(w, h.log, err, "failed to create user")
		return
	}
	h.issue(w, http.StatusCreated, "User created successfully", user)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.log, err, "failed to sign in")
		return
	}
	h.issue(w, http.StatusOK, "login successful", user)
}

func (h *AuthHandler) handleGoogleStart(w http.ResponseWriter, r *http.Request) {
	url, state, err := h.google.Start(r.Context())
	if err != nil {
		h.googleError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, "redirect to google", dto.OAuthStartResponse{URL: url, State: state})
}

func (h *AuthHandler) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		respond.Error(w, http.StatusBadRequest, "Google sign-in was cancelled: "+reason)
		return
	}
	code, state := strings.TrimSpace(q.Get("code")), strings.TrimSpace(q.Get("state"))
	if code == "" || state == "" {
		respond.Error(w, http.StatusBadRequest, "code and state are required")
		return
	}
	profile, err := h.google.Complete(r.Context(), code, state)
	if err != nil {
		h.googleError(w, err)
		return
	}
	user, err := h.accounts.SignInWithGoogle(r.Context(), profile)
	if err != nil {
		writeError(w, h.log, err, "failed to sign in with google")
		return
	}
	h.issue(w, http.StatusOK, "login successful", user)
}

func (h *AuthHandler) googleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrOAuthDisabled):
		respond.Error(w, http.StatusServiceUnavailable, "Google sign-in is not configured.")
	case errors.Is(err, auth.ErrUnknownState):
		respond.Error(w, http.StatusBadRequest, "Sign-in session expired. Please try again.")
	case errors.Is(err, auth.ErrEmailNotVerified):
		respond.Error(w, http.StatusForbidden, "Your Google account email is not verified.")
	default:
		h.log.Error("google sign-in failed", zap.Error(err))
		respond.Error(w, http.StatusBadGateway, "Google sign-in failed.")
	}
}

func (h *AuthHandler) issue(w http.ResponseWriter, status int, message string, user models.User) {
	token, err := h.tokens.Generate(user)
	if err != nil {
		h.log.Error("generate token failed", zap.String("user_id", user.ID), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, status, message, dto.LoginResponse{Token: token, User: user})
}

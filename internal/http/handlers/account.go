package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/http/respond"
	"github.com/hongminglow/skillpath-be/internal/models/dto"
	"github.com/hongminglow/skillpath-be/internal/service"
)

// AccountHandler serves the signed-in user's dashboard and settings.
type AccountHandler struct {
	accounts *service.Accounts
	log      *zap.Logger
}

func NewAccountHandler(accounts *service.Accounts, log *zap.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, log: log.Named("account")}
}

// Register attaches account routes behind guard.
func (h *AccountHandler) Register(mux *http.ServeMux, guard Guard) {
	mux.Handle("GET /me", guard(http.HandlerFunc(h.handleMe)))
	mux.Handle("PATCH /me/settings", guard(http.HandlerFunc(h.handleSettings)))
}

func (h *AccountHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	user, err := h.accounts.Get(r.Context(), userID)
	if err != nil {
		writeError(w, h.log, err, "failed to load user")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}

func (h *AccountHandler) handleSettings(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.SettingsRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	user, err := h.accounts.UpdateSettings(r.Context(), userID, req.DisplayName)
	if err != nil {
		writeError(w, h.log, err, "failed to update settings")
		return
	}
	respond.JSON(w, http.StatusOK, "Settings saved.", user)
}

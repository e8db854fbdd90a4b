package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/http/respond"
	"github.com/hongminglow/skillpath-be/internal/models/dto"
	"github.com/hongminglow/skillpath-be/internal/service"
)

// AssistantHandler serves the AI assistant.
type AssistantHandler struct {
	assistant *service.Assistant
	log       *zap.Logger
}

func NewAssistantHandler(assistant *service.Assistant, log *zap.Logger) *AssistantHandler {
	return &AssistantHandler{assistant: assistant, log: log.Named("assistant")}
}

// Register attaches the assistant route behind limited.
func (h *AssistantHandler) Register(mux *http.ServeMux, limited Guard) {
	mux.Handle("POST /assistant/ask", limited(http.HandlerFunc(h.handleAsk)))
}

func (h *AssistantHandler) handleAsk(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req dto.AskRequest
	if !decodeJSON(w, r, maxBodyBytes, &req) {
		return
	}
	answer, err := h.assistant.Ask(r.Context(), userID, req.Question, req.Context)
	if err != nil {
		writeError(w, h.log, err, "Sorry, I encountered an error. Please try again.")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", dto.AskResponse{Answer: answer})
}

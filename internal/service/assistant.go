package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/ai"
	"github.com/hongminglow/skillpath-be/internal/storage"
)

// Assistant answers technical questions and counts them on the user's dashboard.
type Assistant struct {
	ai    ai.Assistant
	users storage.UserStore
	log   *zap.Logger
}

// NewAssistant constructs the assistant service. model may be nil when AI is not configured.
func NewAssistant(model ai.Assistant, users storage.UserStore, log *zap.Logger) *Assistant {
	return &Assistant{ai: model, users: users, log: log.Named("assistant")}
}

// Ask returns the model's answer to question.
func (a *Assistant) Ask(ctx context.Context, userID, question, details string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", invalid("question", "Question cannot be empty.")
	}
	if a.ai == nil {
		return "", ErrAIUnavailable
	}
	answer, err := a.ai.Ask(ctx, ai.Question{Question: question, Context: strings.TrimSpace(details)})
	if err != nil {
		return "", fmt.Errorf("ask assistant: %w: %w", ErrAIFailure, err)
	}
	if err := a.users.IncrementAssistantQueries(ctx, userID); err != nil {
		a.log.Warn("increment assistant queries failed", zap.String("user_id", userID), zap.Error(err))
	}
	return answer, nil
}

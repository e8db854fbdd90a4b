package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hongminglow/skillpath-be/internal/ai"
)

func TestAssistantAsk(t *testing.T) {
	store := newStore(t)
	u, err := NewAccounts(store, zap.NewNop()).Register(context.Background(), "ada@example.com", "secret1", "Ada")
	require.NoError(t, err)
	model := &stubModel{answer: "Use `go test ./...`."}
	a := NewAssistant(model, store, zap.NewNop())
	ctx := context.Background()

	_, err = a.Ask(ctx, u.ID, "   ", "")
	requireValidation(t, err, "question")
	assert.Empty(t, model.asked)

	answer, err := a.Ask(ctx, u.ID, " How do I run tests? ", " Go roadmap, phase 1 ")
	require.NoError(t, err)
	assert.Equal(t, "Use `go test ./...`.", answer)
	assert.Equal(t, ai.Question{Question: "How do I run tests?", Context: "Go roadmap, phase 1"}, model.asked[0])

	model.err = errors.New("quota exceeded")
	_, err = a.Ask(ctx, u.ID, "And benchmarks?", "")
	assert.ErrorIs(t, err, ErrAIFailure)

	user, err := store.FindUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, user.AIAssistantQueries, "only successful answers are counted")
}

func TestAssistantUnavailable(t *testing.T) {
	a := NewAssistant(nil, newStore(t), zap.NewNop())
	_, err := a.Ask(context.Background(), "u1", "What is a goroutine?", "")
	assert.ErrorIs(t, err, ErrAIUnavailable)
}

func TestAssistantCounterFailureStillAnswers(t *testing.T) {
	a := NewAssistant(&stubModel{answer: "42"}, newStore(t), zap.NewNop())
	answer, err := a.Ask(context.Background(), "unknown-user", "Meaning of life?", "")
	require.NoError(t, err)
	assert.Equal(t, "42", answer)
}

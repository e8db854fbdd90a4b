package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRenderRoadmapPromptNew(t *testing.T) {
	prompt, err := RenderRoadmapPrompt(RoadmapRequest{CareerPath: "Cybersecurity Analyst", SkillLevel: "Beginner"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(prompt, "Create a structured, multi-phase roadmap"))
	assert.Contains(t, prompt, "Career path: Cybersecurity Analyst")
	assert.Contains(t, prompt, "Skill level: Beginner")
	assert.NotContains(t, prompt, "Existing roadmap")
}

func TestRenderRoadmapPromptUpdate(t *testing.T) {
	prompt, err := RenderRoadmapPrompt(RoadmapRequest{
		CareerPath:      "Data Engineer",
		SkillLevel:      "Intermediate",
		ExistingRoadmap: `{"roadmap":[]}`,
		UpdateRequest:   "add Kafka",
	})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Apply this change request from the learner: add Kafka")
	assert.Contains(t, prompt, `{"roadmap":[]}`)

	prompt, err = RenderRoadmapPrompt(RoadmapRequest{CareerPath: "Data Engineer", SkillLevel: "Intermediate", ExistingRoadmap: "[]"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "The learner gave no specific change request.")
}

func TestRenderAssistantPrompt(t *testing.T) {
	prompt, err := RenderAssistantPrompt(Question{Question: "What is a channel?"})
	require.NoError(t, err)
	assert.Equal(t, "Question: What is a channel?", prompt)

	prompt, err = RenderAssistantPrompt(Question{Question: "Why?", Context: "Phase 2: Concurrency"})
	require.NoError(t, err)
	assert.Equal(t, "Context:\nPhase 2: Concurrency\n\nQuestion: Why?", prompt)
}

const roadmapJSON = `{"roadmap":[{"title":"Foundations","duration":"3 weeks","goal":"Basics",
	"technologies":[{"title":"Linux","description":"Shell","completed":true}],
	"resources":null}]}`

func TestDecodeRoadmap(t *testing.T) {
	phases, err := DecodeRoadmap("```json\n" + roadmapJSON + "\n```")
	require.NoError(t, err)
	require.Len(t, phases, 1)
	assert.Equal(t, "Linux", phases[0].Technologies[0].Title)
	assert.False(t, phases[0].Technologies[0].Completed, "generated items start incomplete")
	assert.NotNil(t, phases[0].Resources)

	_, err = DecodeRoadmap(`{"roadmap":[]}`)
	assert.ErrorIs(t, err, ErrGeneration)
	_, err = DecodeRoadmap("Sorry, I cannot help with that.")
	assert.ErrorIs(t, err, ErrGeneration)
}

// fakeGemini answers generateContent calls with canned text.
type fakeGemini struct {
	mu     sync.Mutex
	reply  string
	status int
	bodies []map[string]any
	paths  []string
}

func (f *fakeGemini) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]any
	_ = json.Unmarshal(raw, &body)
	f.mu.Lock()
	f.bodies = append(f.bodies, body)
	f.paths = append(f.paths, r.URL.Path)
	status, reply := f.status, f.reply
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`))
		return
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []any{map[string]any{
			"content":      map[string]any{"role": "model", "parts": []any{map[string]any{"text": reply}}},
			"finishReason": "STOP",
		}},
	})
}

func newFakeGemini(t *testing.T, reply string) (*Gemini, *fakeGemini) {
	t.Helper()
	fake := &fakeGemini{reply: reply}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	g, err := NewGemini(context.Background(), "test-key", "", zap.NewNop(), WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)
	return g, fake
}

func TestGeminiGenerateRoadmap(t *testing.T) {
	g, fake := newFakeGemini(t, roadmapJSON)
	phases, err := g.GenerateRoadmap(context.Background(), RoadmapRequest{CareerPath: "SRE", SkillLevel: "Beginner"})
	require.NoError(t, err)
	require.Len(t, phases, 1)
	assert.Equal(t, "Foundations", phases[0].Title)

	require.Len(t, fake.paths, 1)
	assert.True(t, strings.HasSuffix(fake.paths[0], DefaultModel+":generateContent"), fake.paths[0])
	cfg, ok := fake.bodies[0]["generationConfig"].(map[string]any)
	require.True(t, ok, "generation config is sent")
	assert.Equal(t, "application/json", cfg["responseMimeType"])
}

func TestGeminiAsk(t *testing.T) {
	g, _ := newFakeGemini(t, `{"answer":"Use a buffered channel."}`)
	answer, err := g.Ask(context.Background(), Question{Question: "How do I queue work?"})
	require.NoError(t, err)
	assert.Equal(t, "Use a buffered channel.", answer)
}

func TestGeminiUnusableReplies(t *testing.T) {
	g, fake := newFakeGemini(t, `{"answer":""}`)
	_, err := g.Ask(context.Background(), Question{Question: "Anything?"})
	assert.ErrorIs(t, err, ErrGeneration)

	fake.mu.Lock()
	fake.reply = "not json"
	fake.mu.Unlock()
	_, err = g.GenerateRoadmap(context.Background(), RoadmapRequest{CareerPath: "SRE", SkillLevel: "Beginner"})
	assert.ErrorIs(t, err, ErrGeneration)

	fake.mu.Lock()
	fake.status = http.StatusInternalServerError
	fake.mu.Unlock()
	_, err = g.Ask(context.Background(), Question{Question: "Anything?"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrGeneration)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), " ", "", nil)
	assert.Error(t, err)
}

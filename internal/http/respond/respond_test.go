package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONWritesEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusCreated, "created", map[string]string{"id": "p1"})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var env struct {
		Code    int               `json:"code"`
		Message string            `json:"message"`
		Data    map[string]string `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, http.StatusCreated, env.Code)
	assert.Equal(t, "created", env.Message)
	assert.Equal(t, "p1", env.Data["id"])
}

func TestErrorOmitsDataAndErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusNotFound, "roadmap not found")

	var raw map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&raw))
	assert.Equal(t, "roadmap not found", raw["message"])
	assert.NotContains(t, raw, "data")
	assert.NotContains(t, raw, "errors")
}

func TestValidationCarriesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	Validation(rec, "Question cannot be empty.", map[string][]string{"question": {"Question cannot be empty."}})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var env Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	assert.Equal(t, []string{"Question cannot be empty."}, env.Errors["question"])
}

package enhance

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	out     string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.out, f.err
}

func postEnhance(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/enhance-note", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.EnhanceNote(rec, req)
	return rec
}

func TestEnhanceNoteSuccess(t *testing.T) {
	gen := &fakeGenerator{out: "Lake trip, birds seen."}
	rec := postEnhance(NewHandler(gen), `{"content":"Went to the lake, saw birds.","enhanceType":"concise"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp EnhanceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Lake trip, birds seen.", resp.EnhancedContent)

	require.Len(t, gen.prompts, 1)
	assert.Equal(t, BuildPrompt("Went to the lake, saw birds.", Concise), gen.prompts[0])
}

func TestEnhanceNoteValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing content", `{"enhanceType":"grammar"}`, "Content is required"},
		{"empty content", `{"content":"","enhanceType":"grammar"}`, "Content is required"},
		{"missing type", `{"content":"hello"}`, "Enhancement type is required"},
		{"malformed", `{"content":`, "Invalid request body"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{}
			rec := postEnhance(NewHandler(gen), tc.body)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, strings.TrimSpace(rec.Body.String()))
			assert.Empty(t, gen.prompts, "model must not be called")
		})
	}
}

func TestEnhanceNoteUpstreamFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("quota exceeded")}
	rec := postEnhance(NewHandler(gen), `{"content":"hello","enhanceType":"general"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal error", strings.TrimSpace(rec.Body.String()))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))
}

func TestEnhanceNoteMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHandler(&fakeGenerator{}).EnhanceNote(rec, httptest.NewRequest(http.MethodGet, "/api/enhance-note", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

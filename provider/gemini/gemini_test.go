package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thinkspaces/thinkspaces"
)

func TestNew_MissingKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	_, err := New("")
	var cfgErr *thinkspaces.ErrConfig
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "gemini", cfgErr.Provider)
	assert.Contains(t, cfgErr.Message, EnvAPIKey)
}

func TestNew_Defaults(t *testing.T) {
	p, err := New("", WithAPIKey("test-key"))
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, p.model)
	assert.Equal(t, "gemini", p.Name())
}

func TestContents(t *testing.T) {
	got := contents(thinkspaces.NewCompletionRequest("Hi", "sys", []string{"a", "b"}, nil))
	require.Len(t, got, 1)
	require.Len(t, got[0].Parts, 1)
	assert.Equal(t, "Hi", got[0].Parts[0].Text)
}

func TestSystemInstruction(t *testing.T) {
	tests := []struct {
		name    string
		system  string
		context []string
		want    []string
	}{
		{"system and context", "sys", []string{"a", "b"}, []string{"sys", "Context:\na\nb"}},
		{"context only", "", []string{"a"}, []string{"Context:\na"}},
		{"system only", "sys", nil, []string{"sys"}},
		{"neither", "", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := systemInstruction(thinkspaces.NewCompletionRequest("Hi", tt.system, tt.context, nil))
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			var texts []string
			for _, part := range got.Parts {
				texts = append(texts, part.Text)
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.5-pro:generateContent"), r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "systemInstruction")
		raw, _ := json.Marshal(body["systemInstruction"])
		assert.Contains(t, string(raw), `Context:\nnote`)
		raw, _ = json.Marshal(body["contents"])
		assert.NotContains(t, string(raw), "Context:")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"candidates": [{"content": {"role": "model", "parts": [{"text": "gemini says hi"}]}, "finishReason": "STOP"}],
			"usageMetadata": {"promptTokenCount": 4, "candidatesTokenCount": 3, "totalTokenCount": 7},
			"modelVersion": "gemini-2.5-pro-001"
		}`))
	}))
	defer srv.Close()

	p, err := New("", WithAPIKey("test-key"), WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	resp, err := p.Generate(context.Background(), thinkspaces.NewCompletionRequest("Hi", "sys", []string{"note"}, map[string]any{"model": "gemini-2.5-pro"}))
	require.NoError(t, err)
	assert.Equal(t, "gemini says hi", resp.Output)
	assert.Equal(t, "gemini-2.5-pro-001", resp.Metadata["model"])
	assert.Equal(t, 7, thinkspaces.UsageFromMetadata(resp.Metadata).TotalTokens)
}

func TestGenerate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": {"code": 403, "message": "API key not valid", "status": "PERMISSION_DENIED"}}`))
	}))
	defer srv.Close()

	p, err := New("", WithAPIKey("bad"), WithBaseURL(srv.URL+"/"))
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), thinkspaces.NewCompletionRequest("Hi", "", nil, nil))
	var llmErr *thinkspaces.ErrLLM
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "gemini", llmErr.Provider)
	assert.True(t, thinkspaces.IsClientError(err))
}

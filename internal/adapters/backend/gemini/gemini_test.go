package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/locale"
	"github.com/bnema/memochat/internal/ports"
	"github.com/bnema/memochat/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	mu   sync.Mutex
	path string
	body map[string]any
}

func newServer(t *testing.T, status int, response string, captured *capturedRequest) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			captured.mu.Lock()
			captured.path = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&captured.body)
			captured.mu.Unlock()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)
	return server
}

func newBackend(t *testing.T, server *httptest.Server) *Backend {
	t.Helper()

	catalog := locale.MustLookup("en")
	backend, err := New(context.Background(), Config{
		APIKey:            "test-key",
		BaseURL:           server.URL + "/",
		HTTPClient:        server.Client(),
		SystemInstruction: catalog.SystemInstruction,
		Tools:             tools.Registry(catalog),
	})
	require.NoError(t, err)
	return backend
}

func TestGenerateMapsTranscriptAndFunctionCall(t *testing.T) {
	captured := &capturedRequest{}
	server := newServer(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"functionCall":{"name":"saveUserData","args":{"key":"color","value":"blue"}}}]}}]}`, captured)
	backend := newBackend(t, server)

	call := domain.FunctionCall{Name: "getUserData", Args: map[string]any{"key": "name"}}
	resp, err := backend.Generate(context.Background(), ports.ModelRequest{
		History: domain.Transcript{
			domain.UserText("what is my name"),
			domain.ModelCall(call),
			domain.FunctionResult(domain.ResponsePart("getUserData", "not found")),
			domain.ModelText("I don't know yet."),
		},
		NewMessage: "my favorite color is blue",
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.FunctionCall{{Name: "saveUserData", Args: map[string]any{"key": "color", "value": "blue"}}}, resp.FunctionCalls)

	captured.mu.Lock()
	defer captured.mu.Unlock()
	assert.True(t, strings.HasSuffix(captured.path, "models/gemini-2.5-flash:generateContent"), captured.path)

	contents, ok := captured.body["contents"].([]any)
	require.True(t, ok)
	require.Len(t, contents, 5)
	roles := make([]string, 0, len(contents))
	for _, c := range contents {
		roles = append(roles, c.(map[string]any)["role"].(string))
	}
	assert.Equal(t, []string{"user", "model", "user", "model", "user"}, roles)

	functionTurn := contents[2].(map[string]any)["parts"].([]any)[0].(map[string]any)
	assert.Equal(t, map[string]any{"name": "getUserData", "response": map[string]any{"result": "not found"}}, functionTurn["functionResponse"])

	system := captured.body["systemInstruction"].(map[string]any)["parts"].([]any)[0].(map[string]any)
	assert.Equal(t, locale.MustLookup("en").SystemInstruction, system["text"])

	toolList := captured.body["tools"].([]any)
	require.Len(t, toolList, 1)
	decls := toolList[0].(map[string]any)["functionDeclarations"].([]any)
	names := make([]string, 0, len(decls))
	for _, d := range decls {
		names = append(names, d.(map[string]any)["name"].(string))
	}
	assert.Equal(t, []string{"saveUserData", "getUserData", "getAllUserData"}, names)
}

func TestGenerateReturnsText(t *testing.T) {
	server := newServer(t, http.StatusOK, `{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello "},{"text":"there"}]}}]}`, nil)
	backend := newBackend(t, server)

	resp, err := backend.Generate(context.Background(), ports.ModelRequest{NewMessage: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", resp.Text)
	assert.Empty(t, resp.FunctionCalls)
}

func TestGenerateClassifiesFailures(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		server := newServer(t, http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`, nil)
		backend := newBackend(t, server)

		_, err := backend.Generate(context.Background(), ports.ModelRequest{NewMessage: "hi"})
		require.Error(t, err)
		assert.Equal(t, domain.BackendServerError, domain.BackendErrorKindOf(err))
	})

	t.Run("no candidates", func(t *testing.T) {
		server := newServer(t, http.StatusOK, `{"candidates":[]}`, nil)
		backend := newBackend(t, server)

		_, err := backend.Generate(context.Background(), ports.ModelRequest{NewMessage: "hi"})
		require.Error(t, err)
		assert.Equal(t, domain.BackendBadResponse, domain.BackendErrorKindOf(err))
	})

	t.Run("unreachable", func(t *testing.T) {
		server := newServer(t, http.StatusOK, `{}`, nil)
		backend := newBackend(t, server)
		server.Close()

		_, err := backend.Generate(context.Background(), ports.ModelRequest{NewMessage: "hi"})
		require.Error(t, err)
		assert.Equal(t, domain.BackendNetworkFailure, domain.BackendErrorKindOf(err))
	})
}

func TestNewRequiresAPIKey(t *testing.T) {
	_, err := New(context.Background(), Config{})
	require.Error(t, err)
}

func TestDeclarationsCarrySchema(t *testing.T) {
	decls := declarations(tools.Registry(locale.MustLookup("en")))
	require.Len(t, decls, 3)

	save := decls[0]
	assert.Equal(t, []string{"key", "value"}, save.Parameters.Required)
	require.Contains(t, save.Parameters.Properties, "key")
	assert.Equal(t, "STRING", string(save.Parameters.Properties["key"].Type))
	assert.Empty(t, decls[2].Parameters.Properties)
}

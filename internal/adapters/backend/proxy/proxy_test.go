package proxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bnema/memochat/internal/domain"
	"github.com/bnema/memochat/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePostsWireContract(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "what is my name", body["newMessage"])
		history, ok := body["history"].([]any)
		require.True(t, ok)
		assert.Len(t, history, 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":"","functionCalls":[{"name":"getUserData","args":{"key":"name"}}]}`))
	}))
	t.Cleanup(server.Close)

	backend, err := New(server.URL+"/api/proxy", server.Client(), time.Second)
	require.NoError(t, err)

	resp, err := backend.Generate(context.Background(), ports.ModelRequest{
		History:    domain.Transcript{domain.UserText("hi"), domain.ModelText("hello")},
		NewMessage: "what is my name",
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.FunctionCall{{Name: "getUserData", Args: map[string]any{"key": "name"}}}, resp.FunctionCalls)
}

func TestGenerateSendsFunctionResponses(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ports.ModelRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Empty(t, req.NewMessage)
		require.Len(t, req.FunctionResponses, 1)
		assert.Equal(t, "saved", req.FunctionResponses[0].FunctionResponse.Result())

		_, _ = w.Write([]byte(`{"text":"Done."}`))
	}))
	t.Cleanup(server.Close)

	backend, err := New(server.URL, server.Client(), 0)
	require.NoError(t, err)

	resp, err := backend.Generate(context.Background(), ports.ModelRequest{
		History:           domain.Transcript{domain.UserText("remember x")},
		FunctionResponses: []domain.Part{domain.ResponsePart("saveUserData", "saved")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Done.", resp.Text)
}

func TestGenerateClassifiesFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		kind   domain.BackendErrorKind
		detail string
	}{
		{name: "details preferred", status: http.StatusInternalServerError, body: `{"error":"Failed to get response from AI","details":"quota exhausted"}`, kind: domain.BackendServerError, detail: "status 500: quota exhausted"},
		{name: "error only", status: http.StatusMethodNotAllowed, body: `{"error":"Method Not Allowed"}`, kind: domain.BackendServerError, detail: "status 405: Method Not Allowed"},
		{name: "plain body", status: http.StatusBadGateway, body: `upstream down`, kind: domain.BackendServerError, detail: "status 502"},
		{name: "undecodable success", status: http.StatusOK, body: `<html>`, kind: domain.BackendBadResponse},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			backend, err := New(server.URL, server.Client(), time.Second)
			require.NoError(t, err)

			_, err = backend.Generate(context.Background(), ports.ModelRequest{NewMessage: "hi"})
			require.Error(t, err)
			assert.Equal(t, tc.kind, domain.BackendErrorKindOf(err))
			if tc.detail != "" {
				var backendErr *domain.BackendError
				require.ErrorAs(t, err, &backendErr)
				assert.Equal(t, tc.detail, backendErr.Detail)
			}
		})
	}
}

func TestGenerateNetworkFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	backend, err := New(url, nil, time.Second)
	require.NoError(t, err)

	_, err = backend.Generate(context.Background(), ports.ModelRequest{NewMessage: "hi"})
	require.Error(t, err)
	assert.Equal(t, domain.BackendNetworkFailure, domain.BackendErrorKindOf(err))
}

func TestGenerateTimesOutWithoutCallerDeadline(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		server.Close()
	})

	backend, err := New(server.URL, server.Client(), 20*time.Millisecond)
	require.NoError(t, err)

	_, err = backend.Generate(context.Background(), ports.ModelRequest{NewMessage: "hi"})
	require.Error(t, err)
	assert.Equal(t, domain.BackendNetworkFailure, domain.BackendErrorKindOf(err))
}

func TestNewValidatesURL(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "ftp://host/api", "http://", "::bad"} {
		_, err := New(raw, nil, 0)
		assert.Error(t, err, raw)
	}
}

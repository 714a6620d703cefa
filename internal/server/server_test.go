// ABOUTME: Tests for the gateway HTTP server: auth, routing, and lifecycle.
// ABOUTME: Drives the handler chain through httptest without real sockets.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/admjs/obsidian-mcp/internal/prompts"
	"github.com/admjs/obsidian-mcp/internal/tools"
)

const testKey = "test-api-key"

func newTestServer(t *testing.T) *Server {
	t.Helper()

	registry := tools.NewRegistry(slog.Default())
	registry.Register(&tools.Tool{
		Descriptor: tools.Descriptor{
			Name:        "echo",
			Description: "Echo the message back",
			InputSchema: json.RawMessage(`{"type":"object","properties":{"message":{"type":"string"}},"required":["message"]}`),
		},
		Handler: func(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
			var in struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(input, &in); err != nil {
				return nil, err
			}
			if in.Message == "" {
				return nil, errors.New("message is required")
			}
			return []tools.Content{tools.TextContent(in.Message)}, nil
		},
	})
	registry.Register(&tools.Tool{
		Descriptor: tools.Descriptor{Name: "panicky"},
		Handler: func(ctx context.Context, input json.RawMessage) ([]tools.Content, error) {
			panic("boom")
		},
	})

	promptReg := prompts.NewRegistry(slog.Default())
	promptReg.SetSystemPrompt(func() string { return "vault instructions" })

	srv, err := New(Config{
		APIKey:   testKey,
		Version:  "test",
		Registry: registry,
		Prompts:  promptReg,
		Logger:   slog.Default(),
	})
	require.NoError(t, err)
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	srv.routes().ServeHTTP(rec, req)
	return rec
}

func TestAuth(t *testing.T) {
	srv := newTestServer(t)

	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/mcp/tools"},
		{http.MethodPost, "/api/mcp/tools/call"},
		{http.MethodGet, "/api/mcp/health"},
		{http.MethodGet, "/api/mcp/prompts"},
		{http.MethodPost, "/api/mcp/prompts/get"},
	}

	t.Run("wrong key rejected on every route", func(t *testing.T) {
		for _, rt := range routes {
			rec := doRequest(t, srv, rt.method, rt.path, "wrong-key", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", rt.method, rt.path)
			assert.Contains(t, rec.Body.String(), "Invalid API key")
		}
	})

	t.Run("missing header rejected on every route", func(t *testing.T) {
		for _, rt := range routes {
			rec := doRequest(t, srv, rt.method, rt.path, "", "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", rt.method, rt.path)
			assert.Contains(t, rec.Body.String(), "missing authorization header")
		}
	})

	t.Run("malformed header rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/mcp/tools", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		srv.routes().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("key update takes effect on next request", func(t *testing.T) {
		srv := newTestServer(t)
		srv.UpdateAPIKey("rotated")

		rec := doRequest(t, srv, http.MethodGet, "/api/mcp/tools", testKey, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = doRequest(t, srv, http.MethodGet, "/api/mcp/tools", "rotated", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t)

	t.Run("preflight answered without auth", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodOptions, "/api/mcp/tools", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("headers set on normal responses", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/mcp/health", testKey, "")
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestListTools(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/mcp/tools", testKey, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var descriptors []tools.Descriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &descriptors))
	require.Len(t, descriptors, 2)
	assert.Equal(t, "echo", descriptors[0].Name)
}

func TestCallTool(t *testing.T) {
	srv := newTestServer(t)

	t.Run("success wraps content", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/mcp/tools/call", testKey,
			`{"name":"echo","arguments":{"message":"hi"}}`)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp CallToolResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Content, 1)
		assert.Equal(t, "hi", resp.Content[0].Text)
	})

	t.Run("missing name is 400", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/mcp/tools/call", testKey,
			`{"arguments":{}}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown tool is 404", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/mcp/tools/call", testKey,
			`{"name":"nonexistent"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("handler error is 500 with message", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/mcp/tools/call", testKey,
			`{"name":"echo","arguments":{}}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "message is required")
	})

	t.Run("handler panic is 500, server survives", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/mcp/tools/call", testKey,
			`{"name":"panicky"}`)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)

		rec = doRequest(t, srv, http.MethodGet, "/api/mcp/health", testKey, "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("invalid body is 400", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/mcp/tools/call", testKey, `{not json`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/mcp/health", testKey, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.NotEmpty(t, health.Timestamp)
}

func TestPrompts(t *testing.T) {
	srv := newTestServer(t)

	t.Run("list", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodGet, "/api/mcp/prompts", testKey, "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Prompts []prompts.Prompt `json:"prompts"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Prompts, 1)
		assert.Equal(t, "init", resp.Prompts[0].Name)
	})

	t.Run("get known prompt", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/mcp/prompts/get", testKey,
			`{"name":"init"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "vault instructions")
	})

	t.Run("unknown prompt is 404", func(t *testing.T) {
		rec := doRequest(t, srv, http.MethodPost, "/api/mcp/prompts/get", testKey,
			`{"name":"mystery"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestUnknownRoute(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodGet, "/api/mcp/unknown", testKey, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Wrong method on a known path is also a 404.
	rec = doRequest(t, srv, http.MethodPost, "/api/mcp/tools", testKey, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLifecycle(t *testing.T) {
	srv := newTestServer(t)
	srv.host = "127.0.0.1"
	srv.port = 0 // pick a free port

	require.NoError(t, srv.Start())
	addr := srv.Addr()
	require.NotEmpty(t, addr)

	t.Run("second start is a no-op", func(t *testing.T) {
		require.NoError(t, srv.Start())
		assert.Equal(t, addr, srv.Addr(), "listener unchanged after redundant start")
	})

	t.Run("serves over the socket", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, "http://"+addr+"/api/mcp/health", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+testKey)

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	require.NoError(t, srv.Stop())

	t.Run("stop when stopped is a no-op", func(t *testing.T) {
		require.NoError(t, srv.Stop())
	})

	t.Run("restart after port update", func(t *testing.T) {
		srv.UpdatePort(0)
		require.NoError(t, srv.Start())
		require.NotEmpty(t, srv.Addr())
		require.NoError(t, srv.Stop())
	})
}

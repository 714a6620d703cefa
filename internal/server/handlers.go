// ABOUTME: HTTP handlers for the /api/mcp routes.
// ABOUTME: Thin JSON adapters between the wire and the tool/prompt registries.

package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/admjs/obsidian-mcp/internal/prompts"
	"github.com/admjs/obsidian-mcp/internal/tools"
)

// MaxRequestBodySize is the maximum allowed size for request bodies (1MB).
const MaxRequestBodySize = 1 << 20

// CallToolRequest is the JSON request body for POST /api/mcp/tools/call.
type CallToolRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// CallToolResponse is the JSON response for POST /api/mcp/tools/call.
type CallToolResponse struct {
	Content []tools.Content `json:"content"`
}

// GetPromptRequest is the JSON request body for POST /api/mcp/prompts/get.
type GetPromptRequest struct {
	Name string `json:"name"`
}

// HealthResponse is the JSON response for GET /api/mcp/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// handleListTools handles GET /api/mcp/tools.
func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.sendJSON(w, http.StatusOK, s.registry.List())
}

// handleCallTool handles POST /api/mcp/tools/call.
func (s *Server) handleCallTool(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	req, err := decodeBody[CallToolRequest](r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		s.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	content, err := s.registry.Call(r.Context(), req.Name, req.Arguments)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, tools.ErrToolNotFound) {
			status = http.StatusNotFound
		}
		s.sendJSONError(w, status, err.Error())
		return
	}

	s.sendJSON(w, http.StatusOK, CallToolResponse{Content: content})
}

// handleHealth handles GET /api/mcp/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.version,
	})
}

// handleListPrompts handles GET /api/mcp/prompts.
func (s *Server) handleListPrompts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	s.sendJSON(w, http.StatusOK, map[string]any{"prompts": s.prompts.List()})
}

// handleGetPrompt handles POST /api/mcp/prompts/get.
func (s *Server) handleGetPrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	req, err := decodeBody[GetPromptRequest](r)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Name == "" {
		s.sendJSONError(w, http.StatusBadRequest, "name is required")
		return
	}

	result, err := s.prompts.Get(req.Name)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, prompts.ErrPromptNotFound) {
			status = http.StatusNotFound
		}
		s.sendJSONError(w, status, err.Error())
		return
	}

	s.sendJSON(w, http.StatusOK, result)
}

// decodeBody reads and decodes a size-limited JSON request body.
func decodeBody[T any](r *http.Request) (*T, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize))
	if err != nil {
		return nil, errors.New("failed to read request body")
	}
	var v T
	if len(body) > 0 {
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, errors.New("invalid JSON body")
		}
	}
	return &v, nil
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", "error", err)
	}
}

func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	s.sendJSON(w, status, map[string]string{"error": message})
}

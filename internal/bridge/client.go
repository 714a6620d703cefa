// ABOUTME: HTTP client for the gateway's /api/mcp endpoints.
// ABOUTME: Every bridge request becomes one authenticated synchronous call.

package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/admjs/obsidian-mcp/internal/prompts"
	"github.com/admjs/obsidian-mcp/internal/tools"
)

// Client talks to the gateway server over loopback HTTP. The underlying
// http.Client has no timeout: a stalled gateway call stalls the
// corresponding bridge response rather than failing it.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a gateway client for the given base URL and API key.
func NewClient(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{},
		logger:  logger,
	}
}

// Health checks the gateway health endpoint.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/mcp/health", nil)
	return err
}

// ListTools fetches the tool descriptors.
func (c *Client) ListTools(ctx context.Context) ([]tools.Descriptor, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/mcp/tools", nil)
	if err != nil {
		return nil, err
	}
	var descriptors []tools.Descriptor
	if err := json.Unmarshal(body, &descriptors); err != nil {
		return nil, fmt.Errorf("decoding tool list: %w", err)
	}
	return descriptors, nil
}

// ListPrompts fetches the prompt descriptors.
func (c *Client) ListPrompts(ctx context.Context) ([]prompts.Prompt, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/mcp/prompts", nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Prompts []prompts.Prompt `json:"prompts"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding prompt list: %w", err)
	}
	return resp.Prompts, nil
}

// CallTool invokes a tool and returns the raw result body, which already
// has the {content:[...]} shape the MCP tools/call result wants.
func (c *Client) CallTool(ctx context.Context, name string, args json.RawMessage) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]any{"name": name, "arguments": args})
	if err != nil {
		return nil, fmt.Errorf("encoding tool call: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/api/mcp/tools/call", payload)
}

// GetPrompt fetches a prompt result by name.
func (c *Client) GetPrompt(ctx context.Context, name string) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return nil, fmt.Errorf("encoding prompt request: %w", err)
	}
	return c.do(ctx, http.MethodPost, "/api/mcp/prompts/get", payload)
}

// do performs one HTTP round trip and returns the response body.
// Non-2xx responses are converted to errors carrying the server's
// error message when one is present.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling gateway %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errBody) == nil && errBody.Error != "" {
			return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, errBody.Error)
		}
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}

	return respBody, nil
}

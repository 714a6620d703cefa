// ABOUTME: Stdio JSON-RPC loop translating MCP requests into gateway HTTP calls.
// ABOUTME: Reads newline-delimited frames from stdin and answers on stdout.

package bridge

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/admjs/obsidian-mcp/internal/prompts"
	"github.com/admjs/obsidian-mcp/internal/tools"
)

// protocolVersion is the MCP protocol revision advertised on initialize.
const protocolVersion = "2024-11-05"

// maxLineSize bounds a single JSON-RPC frame (1MB). A longer line is
// consumed to its newline and skipped rather than answered.
const maxLineSize = 1 << 20

// ErrUnknownMethod indicates an unsupported JSON-RPC method.
var ErrUnknownMethod = errors.New("unknown method")

// Bridge is the stdio-to-HTTP translation process. It handles input lines
// strictly sequentially: the next line is not read until the previous
// line's response, if any, has been written.
type Bridge struct {
	client  *Client
	in      io.Reader
	out     io.Writer
	logger  *slog.Logger
	version string

	// Fetched once at startup and never refreshed. Serving tools/list and
	// prompts/list from these caches costs zero network calls at the price
	// of staleness.
	tools   []tools.Descriptor
	prompts []prompts.Prompt

	// outMu serializes frame writes. Stdout carries protocol frames only;
	// diagnostics go to the logger on stderr.
	outMu sync.Mutex
}

// New creates a bridge reading JSON-RPC from in and writing frames to out.
func New(client *Client, in io.Reader, out io.Writer, version string, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "dev"
	}
	return &Bridge{
		client:  client,
		in:      in,
		out:     out,
		logger:  logger,
		version: version,
	}
}

// Start performs the startup handshake: one eager fetch of the tool and
// prompt lists. Failure here means the gateway is unreachable and is fatal.
func (b *Bridge) Start(ctx context.Context) error {
	toolList, err := b.client.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("fetching tool list: %w", err)
	}
	promptList, err := b.client.ListPrompts(ctx)
	if err != nil {
		return fmt.Errorf("fetching prompt list: %w", err)
	}

	b.tools = toolList
	b.prompts = promptList

	b.logger.Info("bridge started",
		"tools", len(b.tools),
		"prompts", len(b.prompts),
	)
	return nil
}

// Run processes input lines until end-of-input or context cancellation.
// A malformed or oversized line is logged and skipped without disturbing
// subsequent lines. Returns nil on clean EOF.
func (b *Bridge) Run(ctx context.Context) error {
	reader := bufio.NewReaderSize(b.in, 64*1024)

	var (
		line      []byte
		oversized bool
	)
	for {
		if ctx.Err() != nil {
			return nil
		}

		chunk, err := reader.ReadSlice('\n')
		if !oversized {
			if len(line)+len(chunk) > maxLineSize {
				b.logger.Error("skipping oversized request line", "limit_bytes", maxLineSize)
				oversized = true
				line = nil
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			// The rest of this line is still coming.
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}

		if !oversized {
			if trimmed := strings.TrimSpace(string(line)); trimmed != "" {
				b.handleLine(ctx, []byte(trimmed))
			}
		}
		line, oversized = nil, false

		if errors.Is(err, io.EOF) {
			b.logger.Info("input closed, shutting down")
			return nil
		}
	}
}

// handleLine decodes and dispatches one JSON-RPC message.
func (b *Bridge) handleLine(ctx context.Context, line []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		b.logger.Error("skipping malformed request line", "error", err)
		return
	}

	b.logger.Debug("request", "method", req.Method, "id", string(req.ID))

	result, err := b.dispatch(ctx, &req)

	// Notifications never receive a response, even on error.
	if req.isNotification() {
		if err != nil {
			b.logger.Error("notification handling failed", "method", req.Method, "error", err)
		}
		return
	}

	if err != nil {
		b.logger.Error("request failed", "method", req.Method, "error", err)
		b.writeError(req.ID, err)
		return
	}
	b.writeResult(req.ID, result)
}

// dispatch routes a request to its handler.
func (b *Bridge) dispatch(ctx context.Context, req *JSONRPCRequest) (any, error) {
	switch req.Method {
	case "initialize":
		return b.handleInitialize(), nil

	case "tools/list":
		return map[string]any{"tools": b.tools}, nil

	case "prompts/list":
		return map[string]any{"prompts": b.prompts}, nil

	case "tools/call":
		var params callToolParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
		}
		if params.Name == "" {
			return nil, errors.New("tool name is required")
		}
		raw, err := b.client.CallTool(ctx, params.Name, params.Arguments)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(raw), nil

	case "prompts/get":
		var params getPromptParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				return nil, fmt.Errorf("invalid params: %w", err)
			}
		}
		if params.Name == "" {
			return nil, errors.New("prompt name is required")
		}
		raw, err := b.client.GetPrompt(ctx, params.Name)
		if err != nil {
			return nil, err
		}
		return json.RawMessage(raw), nil

	default:
		if strings.HasPrefix(req.Method, "notifications/") {
			b.logger.Debug("accepted notification", "method", req.Method)
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownMethod, req.Method)
	}
}

// handleInitialize returns the static capability and version info.
func (b *Bridge) handleInitialize() map[string]any {
	return map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools":   map[string]any{},
			"prompts": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    "obsidian-mcp-bridge",
			"version": b.version,
		},
	}
}

// writeResult writes one success frame followed by a newline.
func (b *Bridge) writeResult(id json.RawMessage, result any) {
	b.writeFrame(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Result:  result,
	})
}

// writeError writes one error frame followed by a newline.
func (b *Bridge) writeError(id json.RawMessage, err error) {
	b.writeFrame(JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &JSONRPCError{
			Code:    bridgeErrorCode,
			Message: err.Error(),
		},
	})
}

func (b *Bridge) writeFrame(resp JSONRPCResponse) {
	data, err := json.Marshal(resp)
	if err != nil {
		b.logger.Error("failed to encode response frame", "error", err)
		return
	}

	b.outMu.Lock()
	defer b.outMu.Unlock()
	if _, err := b.out.Write(append(data, '\n')); err != nil {
		b.logger.Error("failed to write response frame", "error", err)
	}
}

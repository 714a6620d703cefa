// Package bridge implements the stdio-to-HTTP MCP bridge process.
//
// # Overview
//
// MCP clients launch the bridge as a subprocess and speak newline-delimited
// JSON-RPC 2.0 over its stdin/stdout. The bridge translates each request
// into an authenticated HTTP call against the gateway's /api/mcp endpoints
// and writes the response back as a single frame. Stdout carries protocol
// frames only; all diagnostics go to stderr via the logger.
//
// # Methods
//
//   - initialize: answered locally with static capability info
//   - tools/list, prompts/list: served from lists fetched once at startup
//   - tools/call, prompts/get: relayed to the gateway per call
//   - notifications/*: accepted and never answered
//
// Unknown methods and failed relays produce a JSON-RPC error frame with
// code -32000. Requests without an id are notifications and never receive
// a response, not even on error.
//
// # Lifecycle
//
// Start performs one eager fetch of the tool and prompt lists; failure
// means the gateway is unreachable and is fatal. Run then processes input
// lines strictly sequentially until stdin closes or the context is
// cancelled. A malformed line, or one exceeding the 1MB frame bound, is
// logged and skipped without disturbing the lines after it.
//
// # Configuration
//
// Configuration comes from the environment (OBSIDIAN_API_KEY and
// OBSIDIAN_VAULT_PATH required, OBSIDIAN_HOST/OBSIDIAN_PORT optional),
// with OBSIDIAN_BRIDGE_CONFIG naming an optional TOML file that supplies
// connection defaults. Explicit environment variables always win over
// the file.
package bridge

// Package tools provides the tool registry and dispatch for the gateway.
//
// # Overview
//
// Every capability the gateway exposes to MCP clients is a Tool: a
// descriptor (name, description, JSON schema for its input) paired with a
// handler function. The Registry tracks registered tools and dispatches
// calls to them.
//
// # Registration
//
// Tools register by name. Registering a name twice replaces the earlier
// tool but keeps its position in the listing, so re-registration does not
// reshuffle what clients see:
//
//	reg := tools.NewRegistry(logger)
//	reg.Register(tool)
//	reg.RegisterAll(builtins.VaultTools(v))
//
// List() returns descriptors in registration order. That order is the
// order clients receive from tools/list.
//
// # Dispatch
//
// Call looks up the handler and invokes it with the raw argument JSON:
//
//	content, err := reg.Call(ctx, "read_note", args)
//
// Absent or null arguments are normalized to an empty JSON object before
// the handler sees them. Handler errors are logged with the tool name and
// returned to the caller unchanged; unknown names fail with
// ErrToolNotFound.
//
// # Content
//
// Handlers return []Content, a tagged union of text, image, and resource
// items. Structured results go through JSONContent, which marshals a
// value into a single text item.
package tools

// Package server provides the gateway's loopback HTTP transport.
//
// # Routes
//
//	GET  /api/mcp/tools        tool descriptors, in registration order
//	POST /api/mcp/tools/call   invoke a tool
//	GET  /api/mcp/health       liveness and version
//	GET  /api/mcp/prompts      prompt descriptors
//	POST /api/mcp/prompts/get  fetch a prompt
//
// Every route requires a bearer API key; unmatched paths and wrong
// methods are 404s. Unknown tool and prompt names are 404, invalid
// request bodies 400, handler failures 500 with the error message in
// the JSON body.
//
// # Lifecycle
//
// The server binds 127.0.0.1 by default and is meant for local
// single-user use. Start and Stop are idempotent, and the API key and
// port can be updated at runtime; key changes apply to the next request,
// port changes to the next Start.
package server

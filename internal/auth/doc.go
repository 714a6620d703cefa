// Package auth provides bearer-token authentication for the gateway.
//
// A single shared API key protects every route. The middleware parses
// the Authorization header, compares the token against the current key
// in constant time, and rejects mismatches with a 401 JSON body. The key
// is read through the KeySource interface on every request, so key
// rotation needs no middleware rebuild.
//
// CORS preflight requests pass through unauthenticated; the transport's
// CORS layer answers them.
package auth

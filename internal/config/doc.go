// Package config handles configuration loading for the gateway server.
//
// Configuration is YAML with ${VAR} environment variable expansion:
//
//	server:
//	  host: "127.0.0.1"
//	  port: 28734
//	vault:
//	  path: "${HOME}/notes"
//	auth:
//	  api_key: "${OBSIDIAN_API_KEY}"
//	index:
//	  path: ":memory:"
//	templates:
//	  dir: "prompts"
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// vault.path and auth.api_key are required; everything else has a
// default. Unset variables expand to the empty string.
package config

// Package prompts provides the gateway's prompt registry.
//
// One prompt exists: "init", the system context clients fetch before
// working with the vault. Its body comes from a runtime-supplied getter,
// so the surrounding wiring can regenerate the system prompt without
// touching the registry. The registry also owns the template directory
// setting used by the template tools.
package prompts

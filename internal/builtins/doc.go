// Package builtins provides the gateway's built-in tool sets.
//
// # Tools
//
// Initialization:
//
//   - get_instructions: usage instructions and vault conventions; clients
//     are asked to call this first
//
// Notes:
//
//   - read_note: read a note's content
//   - create_note: create a note, optionally overwriting
//   - append_to_note: append to a note, creating it if absent
//   - delete_note: delete a note
//   - list_notes: list one directory level
//   - get_note_info: size and modification time
//
// Search:
//
//   - search_vault: full-text scan with context snippets
//   - search_by_tag: tag lookup via the metadata index
//   - vault_stats: note and tag counts
//
// Templates:
//
//   - list_templates: list the template directory
//   - read_template: read one template
//
// # Registration
//
//	builtins.RegisterAll(reg, vault, engine, index, prompts)
//
// Registration order is the order clients see in tools/list; the
// initialization tool heads it.
//
// # Index Maintenance
//
// The write tools keep the metadata index in step with the vault:
// create_note and append_to_note reindex the note they touched,
// delete_note removes it. Edits made outside the gateway surface on the
// next startup rebuild.
//
// # Input Validation
//
// Handlers validate their decoded input and wrap failures in
// tools.ErrInvalidInput. Storage-level failures (missing notes, existing
// notes without overwrite) pass through the vault's sentinel errors
// untouched.
package builtins

// ABOUTME: One-stop registration of every builtin tool set.
// ABOUTME: Registration order here is the order clients see in tools/list.

package builtins

import (
	"github.com/admjs/obsidian-mcp/internal/index"
	"github.com/admjs/obsidian-mcp/internal/prompts"
	"github.com/admjs/obsidian-mcp/internal/search"
	"github.com/admjs/obsidian-mcp/internal/tools"
	"github.com/admjs/obsidian-mcp/internal/vault"
)

// RegisterAll registers the builtin tools with the registry. The
// initialization tool comes first so it heads the tool listing.
func RegisterAll(reg *tools.Registry, v *vault.Vault, engine *search.Engine, ix *index.Index, pr *prompts.Registry) {
	reg.RegisterAll(InstructionTools(pr))
	reg.RegisterAll(VaultTools(v, ix))
	reg.RegisterAll(SearchTools(engine, ix))
	reg.RegisterAll(TemplateTools(v, pr))
}

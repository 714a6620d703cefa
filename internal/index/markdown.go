// ABOUTME: Markdown metadata extraction for the vault index.
// ABOUTME: Parses notes with goldmark to pull out the title and inline tags.

package index

import (
	"regexp"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// metadata holds what the index stores per note.
type metadata struct {
	Title string
	Tags  []string
}

// tagPattern matches inline #tags. Obsidian allows nested tags like
// #project/active, so '/' is permitted inside a tag.
var tagPattern = regexp.MustCompile(`#([A-Za-z][A-Za-z0-9_/-]*)`)

var parser = goldmark.New()

// extractMetadata parses the note and returns its title (first heading)
// and the set of inline tags found in prose. Tags inside code blocks and
// code spans are not matched because only prose text nodes are visited.
func extractMetadata(src []byte) metadata {
	doc := parser.Parser().Parse(text.NewReader(src))

	var title string
	var prose strings.Builder

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			if title == "" {
				title = string(node.Text(src))
			}
		case *ast.Text:
			prose.Write(node.Segment.Value(src))
			prose.WriteByte('\n')
		case *ast.CodeSpan, *ast.CodeBlock, *ast.FencedCodeBlock:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	seen := make(map[string]struct{})
	var tags []string
	for _, m := range tagPattern.FindAllStringSubmatch(prose.String(), -1) {
		tag := normalizeTag(m[1])
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	return metadata{Title: title, Tags: tags}
}

// normalizeTag strips a leading '#' and lowercases the tag.
func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimPrefix(tag, "#"))
}

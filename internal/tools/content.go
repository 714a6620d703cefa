// ABOUTME: Content types returned by tool invocations.
// ABOUTME: A tagged union of text, image, and embedded resource items.

package tools

import (
	"encoding/json"
	"fmt"
)

// Content kinds as they appear on the wire.
const (
	ContentTypeText     = "text"
	ContentTypeImage    = "image"
	ContentTypeResource = "resource"
)

// Content is one unit of tool output. Exactly one of Text or URL is
// populated depending on Type.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	URL  string `json:"url,omitempty"`
}

// TextContent creates a text content item.
func TextContent(text string) Content {
	return Content{Type: ContentTypeText, Text: text}
}

// ImageContent creates an image reference content item.
func ImageContent(url string) Content {
	return Content{Type: ContentTypeImage, URL: url}
}

// ResourceContent creates an embedded resource reference content item.
func ResourceContent(url string) Content {
	return Content{Type: ContentTypeResource, URL: url}
}

// JSONContent marshals v and wraps it as a single text content item.
// Structured tool results (search output, listings) go through this.
func JSONContent(v any) (Content, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Content{}, fmt.Errorf("encoding tool result: %w", err)
	}
	return TextContent(string(data)), nil
}

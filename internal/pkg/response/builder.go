// Package response builds the human-readable text half of tool results.
package response

import (
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Builder assembles the text half of a tool result. Structured output is
// returned separately by each handler.
type Builder struct {
	sb strings.Builder
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

func (b *Builder) wrapped(left, right, format string, args []any) *Builder {
	b.sb.WriteString(left)
	fmt.Fprintf(&b.sb, format, args...)
	b.sb.WriteString(right)
	return b
}

// Header writes a top-level title line.
func (b *Builder) Header(format string, args ...any) *Builder {
	return b.wrapped("═══ ", " ═══\n", format, args)
}

// Section writes a sub-heading.
func (b *Builder) Section(format string, args ...any) *Builder {
	return b.wrapped("── ", " ──\n", format, args)
}

// KeyValue writes "• key: value".
func (b *Builder) KeyValue(key string, value any) *Builder {
	fmt.Fprintf(&b.sb, "• %s: %v\n", key, value)
	return b
}

// OptionalKeyValue writes a key-value pair only when value is non-empty.
func (b *Builder) OptionalKeyValue(key, value string) *Builder {
	if value == "" {
		return b
	}
	return b.KeyValue(key, value)
}

// Item writes an indented arrow bullet.
func (b *Builder) Item(format string, args ...any) *Builder {
	return b.wrapped("  → ", "\n", format, args)
}

// Numbered writes items as a 1-based numbered list, in order.
func (b *Builder) Numbered(items []string) *Builder {
	for i, item := range items {
		fmt.Fprintf(&b.sb, "  %d. %s\n", i+1, item)
	}
	return b
}

// Line writes a formatted line.
func (b *Builder) Line(format string, args ...any) *Builder {
	return b.wrapped("", "\n", format, args)
}

// Blank writes an empty line.
func (b *Builder) Blank() *Builder {
	b.sb.WriteByte('\n')
	return b
}

// Separator writes a horizontal rule.
func (b *Builder) Separator() *Builder {
	b.sb.WriteString("───────────────────────────────\n")
	return b
}

// Raw writes text as-is, without a trailing newline.
func (b *Builder) Raw(text string) *Builder {
	b.sb.WriteString(text)
	return b
}

// Build returns the assembled text.
func (b *Builder) Build() string {
	return b.sb.String()
}

// TextResult wraps the text in a CallToolResult.
func (b *Builder) TextResult() *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: b.sb.String()}},
	}
}

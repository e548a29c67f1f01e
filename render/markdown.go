// Package render lays solution markdown out as plain text for the Tk result
// panel. The solver's output uses headings, numbered steps and TeX math
// delimiters; math passes through byte for byte, it is only the block
// structure that gets flattened.
package render

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var md = goldmark.New()

// Plain formats solution markdown for a plain-text widget. Input that fails to
// parse as markdown is returned unchanged.
func Plain(markdown string) string {
	source := []byte(markdown)
	root := md.Parser().Parse(text.NewReader(source))

	var b strings.Builder
	for node := root.FirstChild(); node != nil; node = node.NextSibling() {
		renderBlock(&b, node, source, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderBlock(b *strings.Builder, node ast.Node, source []byte, depth int) {
	switch n := node.(type) {
	case *ast.Heading:
		title := inlineText(n, source)
		b.WriteString(title + "\n")
		if n.Level <= 2 {
			b.WriteString(strings.Repeat("=", len(title)) + "\n")
		}
		b.WriteString("\n")
	case *ast.Paragraph, *ast.TextBlock:
		b.WriteString(indent(depth) + inlineText(n, source) + "\n")
		if depth == 0 {
			b.WriteString("\n")
		}
	case *ast.List:
		i := int(n.Start)
		if i == 0 {
			i = 1
		}
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "- "
			if n.IsOrdered() {
				marker = fmt.Sprintf("%d. ", i)
				i++
			}
			b.WriteString(indent(depth) + marker)
			renderListItem(b, item, source, depth)
		}
		if depth == 0 {
			b.WriteString("\n")
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			b.WriteString(indent(depth) + "    " + strings.TrimRight(string(seg.Value(source)), "\n") + "\n")
		}
		if depth == 0 {
			b.WriteString("\n")
		}
	case *ast.ThematicBreak:
		b.WriteString("----\n\n")
	case *ast.Blockquote:
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			b.WriteString(indent(depth) + "> " + inlineText(child, source) + "\n")
		}
		if depth == 0 {
			b.WriteString("\n")
		}
	default:
		if txt := inlineText(node, source); txt != "" {
			b.WriteString(indent(depth) + txt + "\n")
		}
	}
}

// renderListItem flattens an item's first paragraph onto the marker line and
// renders any nested blocks below it.
func renderListItem(b *strings.Builder, item ast.Node, source []byte, depth int) {
	first := true
	for child := item.FirstChild(); child != nil; child = child.NextSibling() {
		if first {
			b.WriteString(inlineText(child, source) + "\n")
			first = false
			continue
		}
		renderBlock(b, child, source, depth+1)
	}
	if first { // empty item
		b.WriteString("\n")
	}
}

// inlineText concatenates the textual content of a node's inline children,
// leaving math delimiters and code spans untouched.
func inlineText(node ast.Node, source []byte) string {
	var b strings.Builder
	collectInline(&b, node, source)
	return strings.TrimSpace(b.String())
}

func collectInline(b *strings.Builder, node ast.Node, source []byte) {
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		switch n := child.(type) {
		case *ast.Text:
			b.Write(n.Segment.Value(source))
			if n.SoftLineBreak() || n.HardLineBreak() {
				b.WriteString(" ")
			}
		case *ast.CodeSpan:
			for g := n.FirstChild(); g != nil; g = g.NextSibling() {
				if t, ok := g.(*ast.Text); ok {
					b.Write(t.Segment.Value(source))
				}
			}
		case *ast.AutoLink:
			b.Write(n.URL(source))
		default:
			collectInline(b, child, source)
		}
	}
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

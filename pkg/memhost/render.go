package memhost

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// HTML serializes the subtree rooted at n. Attributes are written in sorted
// order and listeners are omitted, so the output is stable across runs.
func (d *Document) HTML(n *Node) string {
	var sb strings.Builder
	writeHTML(&sb, n)
	return sb.String()
}

func writeHTML(sb *strings.Builder, n *Node) {
	if n.IsText() {
		sb.WriteString(escapeHTML(n.Value()))
		return
	}
	sb.WriteByte('<')
	sb.WriteString(n.tag)
	for _, name := range slices.Sorted(maps.Keys(n.attrs)) {
		v := n.attrs[name]
		if b, ok := v.(bool); ok {
			if b {
				sb.WriteByte(' ')
				sb.WriteString(name)
			}
			continue
		}
		fmt.Fprintf(sb, ` %s="%s"`, name, escapeAttr(FormatValue(v)))
	}
	sb.WriteByte('>')
	for _, c := range n.children {
		writeHTML(sb, c)
	}
	sb.WriteString("</")
	sb.WriteString(n.tag)
	sb.WriteByte('>')
}

// TextContent concatenates the text of every text node under n.
func TextContent(n *Node) string {
	var sb strings.Builder
	writeText(&sb, n)
	return sb.String()
}

func writeText(sb *strings.Builder, n *Node) {
	if n.IsText() {
		sb.WriteString(n.Value())
		return
	}
	for _, c := range n.children {
		writeText(sb, c)
	}
}

// Find returns the first node under root, root included, for which match
// returns true, searching depth-first.
func Find(root *Node, match func(*Node) bool) *Node {
	if match(root) {
		return root
	}
	for _, c := range root.children {
		if n := Find(c, match); n != nil {
			return n
		}
	}
	return nil
}

// FindAll returns every node under root, root included, that matches.
func FindAll(root *Node, match func(*Node) bool) []*Node {
	var out []*Node
	var visit func(*Node)
	visit = func(n *Node) {
		if match(n) {
			out = append(out, n)
		}
		for _, c := range n.children {
			visit(c)
		}
	}
	visit(root)
	return out
}

// ByTag matches element nodes with the given tag.
func ByTag(tag string) func(*Node) bool {
	return func(n *Node) bool { return n.tag == tag }
}

// ByAttr matches nodes whose attribute formats to value.
func ByAttr(name, value string) func(*Node) bool {
	return func(n *Node) bool {
		v, ok := n.attrs[name]
		return ok && FormatValue(v) == value
	}
}

// FormatValue converts an attribute value to its string form.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// escapeHTML escapes text for safe inclusion in HTML content.
func escapeHTML(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

// escapeAttr escapes text for attribute values. In addition to the HTML
// entities it escapes whitespace that could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))

	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\'':
			buf.WriteString("&#39;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}

	return buf.String()
}

package content

import (
	"encoding/json/v2"
	"regexp"
	"strings"
)

// Node kinds in a parsed block stream.
const (
	NodeBlock = "block"
	NodeHTML  = "html"
)

// Node is one span of a post body: either a Gutenberg block (name,
// attributes, inner HTML up to its closing delimiter) or a plain HTML
// span between blocks, converted to markdown.
type Node struct {
	Kind string `json:"kind"`

	// Block nodes.
	Name      string         `json:"name,omitempty"`
	Attrs     map[string]any `json:"attrs,omitempty"`
	AttrsJSON string         `json:"-"`
	HTML      string         `json:"html,omitempty"`

	// HTML nodes.
	Markdown string `json:"markdown,omitempty"`
}

// Block delimiter comments: <!-- wp:core/image {"id":42} --> opens,
// <!-- /wp:core/image --> closes, <!-- wp:spacer /--> self-closes.
var (
	blockOpenRe  = regexp.MustCompile(`<!--\s*wp:([a-zA-Z][a-zA-Z0-9_/-]*)(\s+(\{[\s\S]*?\}))?\s*(/?)-->`)
	blockCloseRe = regexp.MustCompile(`<!--\s*/wp:[a-zA-Z][a-zA-Z0-9_/-]*\s*-->`)
)

// IsGutenberg reports whether a body contains Gutenberg block markers.
func IsGutenberg(body string) bool {
	return strings.Contains(body, "<!-- wp:")
}

// ParseNodes walks a body start to end, emitting block and html nodes
// in document order. A block's inner HTML runs to the next closing
// delimiter of any name; an unterminated block swallows the rest of the
// document. Malformed attribute JSON keeps the raw text with nil Attrs.
func ParseNodes(body string) []Node {
	var nodes []Node
	cursor := 0

	for cursor < len(body) {
		loc := blockOpenRe.FindStringSubmatchIndex(body[cursor:])
		if loc == nil {
			if chunk := strings.TrimSpace(body[cursor:]); chunk != "" {
				nodes = append(nodes, htmlNode(chunk))
			}
			break
		}

		if chunk := strings.TrimSpace(body[cursor : cursor+loc[0]]); chunk != "" {
			nodes = append(nodes, htmlNode(chunk))
		}

		node := Node{Kind: NodeBlock, Name: blockName(body[cursor+loc[2] : cursor+loc[3]])}
		if loc[6] >= 0 {
			node.AttrsJSON = body[cursor+loc[6] : cursor+loc[7]]
			var attrs map[string]any
			if err := json.Unmarshal([]byte(node.AttrsJSON), &attrs); err == nil {
				node.Attrs = attrs
			}
		}

		openEnd := cursor + loc[1]
		selfClosing := loc[9] > loc[8] // the "/" before "-->" matched

		switch {
		case selfClosing:
			cursor = openEnd
		default:
			closeLoc := blockCloseRe.FindStringIndex(body[openEnd:])
			if closeLoc == nil {
				node.HTML = strings.TrimSpace(body[openEnd:])
				cursor = len(body)
			} else {
				node.HTML = strings.TrimSpace(body[openEnd : openEnd+closeLoc[0]])
				cursor = openEnd + closeLoc[1]
			}
		}

		nodes = append(nodes, node)
	}

	return nodes
}

func htmlNode(chunk string) Node {
	return Node{Kind: NodeHTML, HTML: chunk, Markdown: ToMarkdown(chunk)}
}

// blockName prefixes shorthand names with core/, matching how the
// editor serializes them.
func blockName(name string) string {
	if !strings.Contains(name, "/") {
		return "core/" + name
	}
	return name
}

// BlockCounts tallies block usage per block name.
func BlockCounts(body string) map[string]int {
	if !IsGutenberg(body) {
		return nil
	}
	counts := make(map[string]int)
	for _, n := range ParseNodes(body) {
		if n.Kind == NodeBlock {
			counts[n.Name]++
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

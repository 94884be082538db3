// Package dom turns raw page HTML into something a language model can read
// and holds the in-page scripts shared by the CDP based drivers.
package dom

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
)

type CleanConfig struct {
	TagsToRemove     []string
	AttrsToRemove    []string
	MaxOutputSize    int
	CustomAttrFilter func(attr html.Attribute) bool
}

var DefaultCleanConfig = CleanConfig{
	TagsToRemove: []string{
		"script", "style", "noscript", "svg", "iframe",
		"link", "meta", "head", "title",
	},
	AttrsToRemove: []string{
		"style", "srcset", "sizes", "loading", "decoding", "fetchpriority", "tabindex",
	},
	MaxOutputSize: 130_000,
}

// CleanHTML keeps the body of the document, minus comments, non-visual
// tags and noisy attributes. Unparsable input is returned as is.
func CleanHTML(rawHTML string, cfg *CleanConfig) string {
	if cfg == nil {
		cfg = &DefaultCleanConfig
	}

	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	body := findNode(doc, "body")
	if body == nil {
		return rawHTML
	}

	cleanNode(body, cfg)

	var sb strings.Builder
	_ = html.Render(&sb, body)
	return truncate(sb.String(), cfg.MaxOutputSize, "\n<!-- HTML truncated -->")
}

// VisibleText flattens the document into whitespace-normalised text lines.
func VisibleText(rawHTML string, maxSize int) string {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return ""
	}

	root := findNode(doc, "body")
	if root == nil {
		root = doc
	}
	cleanNode(root, &DefaultCleanConfig)

	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				lines = append(lines, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return truncate(strings.Join(lines, "\n"), maxSize, "\n... (truncated)")
}

func findNode(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findNode(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func cleanNode(n *html.Node, cfg *CleanConfig) {
	if n.Type == html.CommentNode {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}
	if n.Type != html.ElementNode && n.Type != html.DocumentNode {
		return
	}

	if n.Type == html.ElementNode && isOneOf(n.Data, cfg.TagsToRemove...) {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		return
	}

	n.Attr = filterAttributes(n.Attr, cfg)

	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		cleanNode(c, cfg)
		c = next
	}
}

func filterAttributes(attrs []html.Attribute, cfg *CleanConfig) []html.Attribute {
	var kept []html.Attribute
	for _, attr := range attrs {
		if shouldRemoveAttr(attr, cfg) {
			continue
		}
		kept = append(kept, attr)
	}
	return kept
}

// aria-label survives because it is often the only name a button has.
func shouldRemoveAttr(attr html.Attribute, cfg *CleanConfig) bool {
	key := attr.Key
	if isOneOf(key, cfg.AttrsToRemove...) {
		return true
	}
	if key == "aria-label" {
		return false
	}
	if strings.HasPrefix(key, "data-") || strings.HasPrefix(key, "aria-") || strings.HasPrefix(key, "on") {
		return true
	}
	return cfg.CustomAttrFilter != nil && cfg.CustomAttrFilter(attr)
}

// truncate keeps at most maxSize bytes of s, never splitting a rune.
func truncate(s string, maxSize int, marker string) string {
	if maxSize <= 0 || len(s) <= maxSize {
		return s
	}
	for maxSize > 0 && !utf8.RuneStart(s[maxSize]) {
		maxSize--
	}
	return s[:maxSize] + marker
}

func isOneOf(s string, candidates ...string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}

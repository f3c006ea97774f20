package extract

import (
	"strings"

	"golang.org/x/net/html"
)

// Tags whose content never belongs in a message
var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true,
}

// PlainText flattens the rich text some columns (long text, updates) carry
// into one line. Input that does not parse is returned trimmed.
func PlainText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return strings.TrimSpace(content)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}

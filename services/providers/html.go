package providers

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// TextWithBreaks returns the text of every node in sel, rendering <br> as a
// newline and skipping script and style contents.
func TextWithBreaks(sel *goquery.Selection) string {
	var sb strings.Builder
	sel.Each(func(i int, s *goquery.Selection) {
		if i > 0 {
			sb.WriteString("\n")
		}
		for _, n := range s.Nodes {
			writeText(n, &sb)
		}
	})
	return strings.TrimSpace(sb.String())
}

func writeText(n *html.Node, sb *strings.Builder) {
	switch {
	case n.Type == html.TextNode:
		sb.WriteString(n.Data)
	case n.Type == html.ElementNode && n.Data == "br":
		sb.WriteString("\n")
	case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(c, sb)
	}
}

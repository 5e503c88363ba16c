package extractor

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/Doc-Inf/Finanza/pkg/models"
)

// Text that looks like a market figure: leading digits with separators,
// optionally a percent.
var numericTextRegex = regexp.MustCompile(`^[\d.,]+%?`)

// CollectSnapshot captures every candidate data element in document order,
// independent of what the cascade ends up using. When the extracted fields
// come back empty or wrong this is what's left to debug with.
func CollectSnapshot(doc *goquery.Document) []models.SnapshotNode {
	var nodes []models.SnapshotNode

	doc.Find("fin-streamer").Each(func(_ int, s *goquery.Selection) {
		nodes = append(nodes, snapshotNode(s))
	})

	doc.Find("span, div, td").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if !numericTextRegex.MatchString(text) {
			return
		}
		// direct text only, container elements repeat every descendant's text
		if s.Children().Length() > 0 {
			return
		}
		nodes = append(nodes, snapshotNode(s))
	})

	return nodes
}

func snapshotNode(s *goquery.Selection) models.SnapshotNode {
	node := models.SnapshotNode{
		Text: strings.TrimSpace(s.Text()),
	}
	if len(s.Nodes) > 0 {
		node.Tag = s.Nodes[0].Data
		if len(s.Nodes[0].Attr) > 0 {
			node.Attrs = make(map[string]string, len(s.Nodes[0].Attr))
			for _, a := range s.Nodes[0].Attr {
				node.Attrs[a.Key] = a.Val
			}
		}
	}
	return node
}

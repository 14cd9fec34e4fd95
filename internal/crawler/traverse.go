package crawler

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxTagWeight is the largest emphasis delta a single tag contributes; the
// ranker normalizes posting weights against it.
const MaxTagWeight = 7

// tagWeights maps tag categories to the emphasis delta applied while inside
// them. Heading deltas scale with heading level; the title tag carries the
// largest delta and also snapshots the document title.
var tagWeights = map[atom.Atom]int{
	atom.B:      2,
	atom.Strong: 2,
	atom.I:      1,
	atom.Em:     1,
	atom.H1:     7,
	atom.H2:     6,
	atom.H3:     5,
	atom.H4:     4,
	atom.H5:     3,
	atom.Title:  MaxTagWeight,
}

// skippedTags and their whole subtrees are never indexed.
var skippedTags = map[atom.Atom]bool{
	atom.Meta:     true,
	atom.Script:   true,
	atom.Link:     true,
	atom.Embed:    true,
	atom.Iframe:   true,
	atom.Frame:    true,
	atom.Noscript: true,
	atom.Object:   true,
	atom.Svg:      true,
	atom.Canvas:   true,
	atom.Applet:   true,
	atom.Frameset: true,
	atom.Textarea: true,
	atom.Style:    true,
	atom.Area:     true,
	atom.Map:      true,
	atom.Base:     true,
	atom.Basefont: true,
	atom.Param:    true,
}

type frame struct {
	node    *html.Node
	entered bool
}

// indexDocument walks the parsed tree depth-first with an explicit stack,
// calling enter and exit hooks around each element so the running emphasis
// weight tracks the open tags.
func (c *Crawler) indexDocument(root *html.Node) {
	stack := []*frame{{node: root}}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.entered {
			c.exitNode(top.node)
			stack = stack[:len(stack)-1]
			continue
		}
		top.entered = true

		if top.node.Type == html.ElementNode && skippedTags[top.node.DataAtom] {
			stack = stack[:len(stack)-1]
			continue
		}

		c.enterNode(top.node)

		// Children are pushed in reverse so they pop in document order.
		for child := top.node.LastChild; child != nil; child = child.PrevSibling {
			stack = append(stack, &frame{node: child})
		}
	}
}

func (c *Crawler) enterNode(n *html.Node) {
	switch n.Type {
	case html.ElementNode:
		if delta, ok := tagWeights[n.DataAtom]; ok {
			c.weight += delta
		}
		switch n.DataAtom {
		case atom.Title:
			c.visitTitle(n)
		case atom.A:
			c.visitAnchor(n)
		}
	case html.TextNode:
		c.addText(n.Data)
	}
}

func (c *Crawler) exitNode(n *html.Node) {
	if n.Type != html.ElementNode {
		return
	}
	if delta, ok := tagWeights[n.DataAtom]; ok {
		c.weight -= delta
	}
}

// visitTitle snapshots the first title element's text as the document title.
func (c *Crawler) visitTitle(n *html.Node) {
	if c.titleSeen {
		return
	}
	c.titleSeen = true

	title := strings.TrimSpace(textContent(n))
	if title == "" {
		return
	}
	if err := c.store.SetDocumentTitle(c.curDocID, title); err != nil {
		// Non-fatal; the document just keeps an empty title.
		return
	}
}

// visitAnchor resolves the link target, records a directed edge from the
// current document and enqueues the target at the next depth.
func (c *Crawler) visitAnchor(n *html.Node) {
	href := attrVal(n, "href")
	if href == "" {
		return
	}

	target, err := resolveURL(c.curURL, href)
	if err != nil || !isCrawlable(target) {
		return
	}

	toID, err := c.documentID(target)
	if err != nil {
		return
	}
	c.addLink(c.curDocID, toID)

	c.queue = append(c.queue, queueItem{url: target, depth: c.curDepth})
}

// addText tokenizes a text node and accumulates each surviving term at the
// current emphasis weight. A term seen at several weights keeps its
// strongest one.
func (c *Crawler) addText(text string) {
	for _, token := range c.tokenizer.Tokenize(text) {
		id, err := c.termID(token)
		if err != nil {
			continue
		}
		if existing, ok := c.curTerms[id]; !ok || c.weight > existing {
			c.curTerms[id] = c.weight
		}
	}
}

func textContent(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			parts = append(parts, node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func attrVal(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

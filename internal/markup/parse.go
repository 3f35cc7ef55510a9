// Package markup turns exported fragments into printable documents and back
// into styled blocks for layout.
package markup

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Run is a piece of text with inline styles. Text keeps the buffer's
// newlines.
type Run struct {
	Text       string
	Bold       bool
	Italic     bool
	Underline  bool
	Color      string
	Background string
}

// Block is a paragraph-level box: a heading, an aligned div or plain flow.
type Block struct {
	// Heading is 1..3, 0 for body text.
	Heading int
	// Align is "left", "center", "right", "justify", or "" for the page
	// default.
	Align string
	Runs  []Run
}

// Text joins the block's runs.
func (b Block) Text() string {
	var sb strings.Builder
	for _, r := range b.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

type context struct {
	run     Run
	heading int
	align   string
}

type parser struct {
	blocks []Block
	cur    Block
}

// Parse reads a document produced by Document, or a bare fragment, into
// blocks. Only the content of the "text" div is considered when present.
func Parse(source string) ([]Block, error) {
	doc, err := html.Parse(strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	root := findByClass(doc, "text")
	if root == nil {
		root = findAtom(doc, atom.Body)
	}
	if root == nil {
		root = doc
	}
	p := &parser{}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, context{})
	}
	p.flush(context{})
	return p.blocks, nil
}

func (p *parser) walk(n *html.Node, ctx context) {
	switch n.Type {
	case html.TextNode:
		p.text(n.Data, ctx)
		return
	case html.ElementNode:
	default:
		return
	}

	block := false
	switch n.DataAtom {
	case atom.Strong, atom.B:
		ctx.run.Bold = true
	case atom.Em, atom.I:
		ctx.run.Italic = true
	case atom.U:
		ctx.run.Underline = true
	case atom.Br:
		p.text("\n", ctx)
		return
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		ctx.heading = min(int(n.Data[1]-'0'), 3)
		block = true
	case atom.Div, atom.P:
		block = true
	case atom.Style, atom.Script, atom.Head:
		return
	}
	css := parseStyle(attr(n, "style"))
	if v := css["color"]; v != "" {
		ctx.run.Color = v
	}
	if v := css["background-color"]; v != "" {
		ctx.run.Background = v
	}
	if v := css["text-align"]; v != "" {
		ctx.align = strings.ToLower(v)
	}

	if block {
		p.flush(ctx)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, ctx)
	}
	if block {
		p.flush(ctx)
	}
}

func (p *parser) text(s string, ctx context) {
	if s == "" {
		return
	}
	if len(p.cur.Runs) == 0 {
		p.cur.Heading = ctx.heading
		p.cur.Align = ctx.align
	}
	r := ctx.run
	r.Text = s
	if n := len(p.cur.Runs); n > 0 && sameStyle(p.cur.Runs[n-1], r) {
		p.cur.Runs[n-1].Text += s
		return
	}
	p.cur.Runs = append(p.cur.Runs, r)
}

// flush closes the current block. Blocks holding only whitespace are
// dropped.
func (p *parser) flush(ctx context) {
	if strings.TrimSpace(p.cur.Text()) != "" {
		p.blocks = append(p.blocks, p.cur)
	}
	p.cur = Block{Heading: ctx.heading, Align: ctx.align}
}

func sameStyle(a, b Run) bool {
	a.Text, b.Text = "", ""
	return a == b
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func parseStyle(s string) map[string]string {
	if s == "" {
		return nil
	}
	out := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		out[strings.ToLower(strings.TrimSpace(k))] = strings.TrimSpace(v)
	}
	return out
}

func findByClass(n *html.Node, class string) *html.Node {
	if n.Type == html.ElementNode {
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByClass(c, class); found != nil {
			return found
		}
	}
	return nil
}

func findAtom(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findAtom(c, a); found != nil {
			return found
		}
	}
	return nil
}

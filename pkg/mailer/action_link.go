package mailer

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// DefaultActionClass is the class of call-to-action links.
const DefaultActionClass = "mail-action"

// ActionNode is a call-to-action link written as [>Label](https://example.com).
type ActionNode struct {
	ast.BaseInline
	Destination []byte
	Label       []byte
}

// KindAction is the node kind of ActionNode.
var KindAction = ast.NewNodeKind("Action")

func (n *ActionNode) Kind() ast.NodeKind { return KindAction }

func (n *ActionNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Destination": string(n.Destination),
		"Label":       string(n.Label),
	}, nil)
}

var actionOpen = []byte("[>")

type actionParser struct{}

func (actionParser) Trigger() []byte { return []byte{'['} }

func (actionParser) Parse(_ ast.Node, block text.Reader, _ parser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, actionOpen) {
		return nil
	}

	rest := line[len(actionOpen):]
	labelEnd := bytes.IndexByte(rest, ']')
	if labelEnd < 0 || labelEnd+1 >= len(rest) || rest[labelEnd+1] != '(' {
		return nil
	}
	label := bytes.TrimSpace(rest[:labelEnd])

	dest := rest[labelEnd+2:]
	destEnd := bytes.IndexByte(dest, ')')
	if destEnd < 0 || len(label) == 0 {
		return nil
	}
	destination := bytes.TrimSpace(dest[:destEnd])
	if len(destination) == 0 || html.IsDangerousURL(destination) {
		return nil
	}

	block.Advance(len(actionOpen) + labelEnd + 2 + destEnd + 1)
	return &ActionNode{Label: label, Destination: destination}
}

type actionRenderer struct {
	class []byte
}

func (r actionRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindAction, r.render)
}

func (r actionRenderer) render(w util.BufWriter, _ []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ActionNode)

	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(n.Destination, true)))
	_, _ = w.WriteString(`" class="`)
	_, _ = w.Write(util.EscapeHTML(r.class))
	_, _ = w.WriteString(`">`)
	_, _ = w.Write(util.EscapeHTML(n.Label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkContinue, nil
}

type actionLinks struct {
	class string
}

// ActionLinks returns a goldmark extension rendering [>Label](url) as a
// link with the given class, so layouts can style it as a button.
func ActionLinks(class string) goldmark.Extender {
	if class == "" {
		class = DefaultActionClass
	}
	return actionLinks{class: class}
}

func (e actionLinks) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithInlineParsers(
		util.Prioritized(actionParser{}, 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(actionRenderer{class: []byte(e.class)}, 50),
	))
}

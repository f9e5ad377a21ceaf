// Package parser builds a DOM tree from markup and drives the element hooks
// the way a page load does: each element is announced once its end tag has
// been seen, deferred work is flushed after the last token, and only then is
// the document marked loaded.
package parser

import (
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/heathj/scriptrun/parser/spec"
)

// DeferredFlusher is implemented by element hooks that hold work back until
// the whole document has been parsed.
type DeferredFlusher interface {
	FlushDeferred(doc *spec.Node) error
}

type Parser struct {
	z     *html.Tokenizer
	doc   *spec.Node
	root  *spec.Node
	stack spec.StackOfOpenElements

	line, col int
	log       *logrus.Entry

	// HookErrors collects what element hooks returned while the tree was
	// built. Parsing carries on past them.
	HookErrors []error
}

type Option func(*Parser)

// WithLogger replaces the standard logrus logger.
func WithLogger(log *logrus.Entry) Option {
	return func(p *Parser) { p.log = log }
}

// NewParser returns a parser that builds htmlIn into doc.
func NewParser(htmlIn io.Reader, doc *spec.Node, opts ...Option) *Parser {
	p := &Parser{
		z:    html.NewTokenizer(htmlIn),
		doc:  doc,
		root: doc,
		line: 1,
		col:  1,
		log:  logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithField("component", "parser")
	return p
}

// Start parses the whole input, flushes deferred work and marks the
// document loaded.
func (p *Parser) Start() (*spec.Node, error) {
	if err := p.build(); err != nil {
		return nil, err
	}

	d := p.doc.Document
	d.ReadyState = spec.Interactive
	if f, ok := d.Hooks.(DeferredFlusher); ok {
		p.report(f.FlushDeferred(p.doc))
	}
	d.FinishLoading()
	return p.doc, nil
}

// ParseHTMLFragment parses input into context the way innerHTML does. The
// owner document is flagged as parsing a snippet until the fragment is
// complete. The new children of context are returned.
func ParseHTMLFragment(context *spec.Node, input string, opts ...Option) (spec.NodeList, error) {
	doc := context.OwnerDocument
	if doc == nil || doc.Document == nil {
		return nil, errors.Errorf("%s has no owner document", context.NodeName)
	}
	p := NewParser(strings.NewReader(input), doc, opts...)
	p.root = context

	d := doc.Document
	prev := d.ParsingSnippet
	d.ParsingSnippet = true
	defer func() { d.ParsingSnippet = prev }()

	before := len(context.ChildNodes)
	if err := p.build(); err != nil {
		return nil, err
	}
	added := make(spec.NodeList, len(context.ChildNodes)-before)
	copy(added, context.ChildNodes[before:])
	return added, nil
}

func (p *Parser) build() error {
	for {
		tt := p.z.Next()
		raw := string(p.z.Raw())
		line, col := p.line, p.col
		p.advance(raw)

		switch tt {
		case html.ErrorToken:
			if err := p.z.Err(); err != io.EOF {
				return errors.Wrap(err, "tokenize")
			}
			p.closeAll()
			return nil
		case html.StartTagToken, html.SelfClosingTagToken:
			p.startTag(tt == html.SelfClosingTagToken, line, col)
		case html.EndTagToken:
			name, _ := p.z.TagName()
			p.endTag(string(name))
		case html.TextToken:
			p.text(string(p.z.Text()))
		case html.CommentToken:
			p.current().ParserAppendChild(spec.NewComment(string(p.z.Text()), p.doc))
		}
	}
}

func (p *Parser) advance(raw string) {
	for _, r := range raw {
		if r == '\n' {
			p.line++
			p.col = 1
			continue
		}
		p.col++
	}
}

func (p *Parser) current() *spec.Node {
	if len(p.stack.NodeList) == 0 {
		return p.root
	}
	return p.stack.NodeList[len(p.stack.NodeList)-1]
}

func (p *Parser) namespace(name string) spec.Namespace {
	if p.doc.Document.IsXML() {
		return spec.NoNamespace
	}
	switch name {
	case "svg":
		return spec.Svgns
	case "math":
		return spec.Mathmlns
	}
	if cur := p.current(); cur.NodeType == spec.ElementNode {
		switch cur.NamespaceURI {
		case spec.Svgns, spec.Mathmlns:
			return cur.NamespaceURI
		}
	}
	return spec.Htmlns
}

func (p *Parser) startTag(selfClosing bool, line, col int) {
	name, hasAttr := p.z.TagName()
	tag := strings.ToLower(string(name))
	n := spec.NewDOMElement(p.doc, tag, p.namespace(tag))
	// attributes present in the markup are not changes, so no hook sees them
	for hasAttr {
		var k, v []byte
		k, v, hasAttr = p.z.TagAttr()
		n.Attributes.SetNamedItem(spec.NewAttr(string(k), string(v), n))
	}
	n.Position = spec.Position{StartLine: line, StartColumn: col, EndLine: p.line, EndColumn: p.col}
	p.current().ParserAppendChild(n)

	// html ignores the self-closing flag on everything but void and foreign
	// elements
	foreign := n.NamespaceURI == spec.Svgns || n.NamespaceURI == spec.Mathmlns || p.doc.Document.IsXML()
	if spec.IsVoidElement(tag) || (selfClosing && foreign) {
		p.report(n.NotifyAllChildrenAdded())
		return
	}
	p.stack.Push(n)
}

// endTag closes the innermost open element named name and everything opened
// after it. Stray end tags are dropped.
func (p *Parser) endTag(name string) {
	name = strings.ToLower(name)
	i := len(p.stack.NodeList) - 1
	for ; i >= 0; i-- {
		if p.stack.NodeList[i].NodeName == name {
			break
		}
	}
	if i < 0 {
		p.log.WithField("tag", name).Debug("stray end tag")
		return
	}
	for len(p.stack.NodeList) > i {
		p.close(p.stack.Pop())
	}
}

func (p *Parser) closeAll() {
	for len(p.stack.NodeList) > 0 {
		p.close(p.stack.Pop())
	}
}

func (p *Parser) close(n *spec.Node) {
	n.EndLine, n.EndColumn = p.line, p.col
	p.report(n.NotifyAllChildrenAdded())
}

func (p *Parser) text(data string) {
	cur := p.current()
	if cur.NodeType == spec.DocumentNode && strings.TrimSpace(data) == "" {
		return
	}
	if last := cur.LastChild; last != nil && last.NodeType == spec.TextNode {
		last.Text.AppendData(data)
		return
	}
	cur.ParserAppendChild(spec.NewTextNode(p.doc, data))
}

func (p *Parser) report(err error) {
	if err == nil {
		return
	}
	p.HookErrors = append(p.HookErrors, err)
	p.log.WithError(err).Error("element hook failed")
}

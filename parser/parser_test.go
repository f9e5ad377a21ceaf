package parser

import (
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heathj/scriptrun/parser/spec"
)

// recordingHooks notes which elements were announced, and in what document
// state, and counts attribute changes.
type recordingHooks struct {
	added      []string
	snippet    []bool
	attrWrites int
	flushed    []spec.ReadyState
	failOn     string
}

func (h *recordingHooks) AttributeWillChange(n *spec.Node, ns spec.Namespace, qualifiedName, value string, cloning bool) bool {
	h.attrWrites++
	return false
}

func (h *recordingHooks) AttributeChanged(n *spec.Node, ns spec.Namespace, qualifiedName, value string) error {
	return nil
}

func (h *recordingHooks) AllChildrenAdded(n *spec.Node) error {
	h.added = append(h.added, n.NodeName)
	h.snippet = append(h.snippet, n.OwnerDocument.Document.ParsingSnippet)
	if n.NodeName == h.failOn {
		return errors.Errorf("%s failed", n.NodeName)
	}
	return nil
}

func (h *recordingHooks) FlushDeferred(doc *spec.Node) error {
	h.flushed = append(h.flushed, doc.Document.ReadyState)
	return nil
}

func parse(t *testing.T, in string) (*spec.Node, *recordingHooks, *Parser) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	doc := spec.NewHTMLDocumentNode("http://example.com/")
	hooks := &recordingHooks{}
	doc.Document.Hooks = hooks
	p := NewParser(strings.NewReader(in), doc, WithLogger(logrus.NewEntry(logger)))
	_, err := p.Start()
	require.NoError(t, err)
	return doc, hooks, p
}

func TestParserTree(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{
			"<html><head><title>T</title></head><body><p class=x>Hi<br>there</p><!--c--></body></html>",
			"#document\n" +
				"| <html>\n" +
				"|   <head>\n" +
				"|     <title>\n" +
				"|       \"T\"\n" +
				"|   <body>\n" +
				"|     <p>\n" +
				"|       class=\"x\"\n" +
				"|       \"Hi\"\n" +
				"|       <br>\n" +
				"|       \"there\"\n" +
				"|     <!-- c -->",
		},
		{
			"<!DOCTYPE html>\n<div><script>if (a < b) {}</script></div>\n",
			"#document\n" +
				"| <div>\n" +
				"|   <script>\n" +
				"|     \"if (a < b) {}\"",
		},
		{
			"<div/><p>inside</p></span></div>",
			"#document\n" +
				"| <div>\n" +
				"|   <p>\n" +
				"|     \"inside\"",
		},
		{
			`<svg><circle r="1"/><g></g></svg>`,
			"#document\n" +
				"| <svg svg>\n" +
				"|   <svg circle>\n" +
				"|     r=\"1\"\n" +
				"|   <svg g>",
		},
		{
			"<p>a &amp; b</p>",
			"#document\n" +
				"| <p>\n" +
				"|   \"a & b\"",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			doc, _, _ := parse(t, tt.in)
			if s := doc.String(); s != tt.want {
				t.Errorf("Wrong document. Expected: \n\n%s\nGot: \n\n%s", tt.want, s)
			}
		})
	}
}

func TestParserAnnouncesOnEndTag(t *testing.T) {
	_, hooks, _ := parse(t, "<html><head><title>T</title></head><body><p>Hi<br>there</p><div></body></html>")
	assert.Equal(t, []string{"title", "head", "br", "p", "div", "body", "html"}, hooks.added)
}

func TestParserAnnouncesUnclosedAtEOF(t *testing.T) {
	_, hooks, _ := parse(t, "<body><div><span>")
	assert.Equal(t, []string{"span", "div", "body"}, hooks.added)
}

func TestParserMarkupAttributesAreNotChanges(t *testing.T) {
	_, hooks, _ := parse(t, `<script src="a.js" defer></script>`)
	assert.Zero(t, hooks.attrWrites)
}

func TestParserPositions(t *testing.T) {
	doc, _, _ := parse(t, "<html>\n<body>\n<script>\nvar a;\n</script>\n</body></html>")
	s := doc.GetElementsByTagName("script")[0]
	assert.Equal(t, spec.Position{StartLine: 3, StartColumn: 1, EndLine: 5, EndColumn: 10}, s.Position)

	code, ok := s.InlineCode()
	require.True(t, ok)
	assert.Equal(t, "\nvar a;\n", code)
}

func TestParserFinishesLoading(t *testing.T) {
	doc, hooks, _ := parse(t, "<p>x</p>")
	assert.Equal(t, []spec.ReadyState{spec.Interactive}, hooks.flushed)
	assert.Equal(t, spec.Complete, doc.Document.ReadyState)
	assert.True(t, doc.Document.LoadFinished())
}

func TestParserCollectsHookErrors(t *testing.T) {
	logger, hook := test.NewNullLogger()
	doc := spec.NewHTMLDocumentNode("http://example.com/")
	hooks := &recordingHooks{failOn: "script"}
	doc.Document.Hooks = hooks

	p := NewParser(strings.NewReader("<script>x</script><script>y</script><p>after</p>"), doc, WithLogger(logrus.NewEntry(logger)))
	_, err := p.Start()
	require.NoError(t, err)

	assert.Len(t, p.HookErrors, 2)
	assert.Equal(t, []string{"script", "script", "p"}, hooks.added)
	require.Len(t, hook.AllEntries(), 2)
	assert.Equal(t, "parser", hook.LastEntry().Data["component"])
}

func TestParseHTMLFragment(t *testing.T) {
	doc, hooks, _ := parse(t, "<body><div id=host></div></body>")
	host := doc.GetElementByID("host")
	hooks.added, hooks.snippet = nil, nil

	nodes, err := ParseHTMLFragment(host, "<b>x</b>text<script>go()</script>")
	require.NoError(t, err)

	require.Len(t, nodes, 3)
	assert.Equal(t, "b", nodes[0].NodeName)
	assert.Equal(t, spec.TextNode, nodes[1].NodeType)
	assert.Equal(t, "script", nodes[2].NodeName)
	assert.Equal(t, host, nodes[2].ParentNode)

	assert.Equal(t, []string{"b", "script"}, hooks.added)
	assert.Equal(t, []bool{true, true}, hooks.snippet)
	assert.False(t, doc.Document.ParsingSnippet)
	assert.Equal(t, `<b>x</b>text<script>go()</script>`, host.InnerHTML())
}

func TestParseHTMLFragmentNoDocument(t *testing.T) {
	orphan := &spec.Node{NodeType: spec.ElementNode, NodeName: "div"}
	_, err := ParseHTMLFragment(orphan, "<p>")
	assert.Error(t, err)
}

func TestParserXMLDocument(t *testing.T) {
	doc := spec.NewXMLDocumentNode("http://example.com/a.xml")
	hooks := &recordingHooks{}
	doc.Document.Hooks = hooks
	_, err := NewParser(strings.NewReader("<root><item/><item></item></root>"), doc).Start()
	require.NoError(t, err)

	items := doc.GetElementsByTagName("item")
	require.Len(t, items, 2)
	assert.Equal(t, spec.NoNamespace, items[0].NamespaceURI)
	assert.Equal(t, doc.FirstChild, items[1].ParentNode)
}

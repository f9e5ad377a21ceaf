package script

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/heathj/scriptrun/parser/spec"
)

const testURL = "http://example.com/index.html"

type run struct {
	code, label string
	line        int
}

type fakeEngine struct {
	runs     []run
	invoked  []*spec.Node
	events   []string
	handlers map[*spec.Node]Handler
	onRun    func(code string) error
}

func (e *fakeEngine) Run(code, label string, reportLine int) error {
	e.runs = append(e.runs, run{code, label, reportLine})
	e.events = append(e.events, "run")
	if e.onRun != nil {
		return e.onRun(code)
	}
	return nil
}

func (e *fakeEngine) Invoke(handler Handler, receiver *spec.Node, args []interface{}, context *spec.Node) error {
	e.invoked = append(e.invoked, receiver)
	e.events = append(e.events, "invoke")
	if f, ok := handler.(func() error); ok {
		return f()
	}
	return nil
}

func (e *fakeEngine) ReadyStateChangeHandler(n *spec.Node) Handler {
	if h, ok := e.handlers[n]; ok {
		return h
	}
	return nil
}

type load struct {
	node               *spec.Node
	reference, charset string
}

type fakeLoader struct {
	loads []load
}

func (l *fakeLoader) Load(n *spec.Node, reference, charset string) {
	l.loads = append(l.loads, load{n, reference, charset})
}

type fixture struct {
	doc, body *spec.Node
	ctx       *Context
	engine    *fakeEngine
	loader    *fakeLoader
	logs      *test.Hook
}

// newFixture returns an HTML document with html and body elements, shown in
// a window, with a Context installed for profile.
func newFixture(t *testing.T, profile ExecutionProfile, opts ...Option) *fixture {
	t.Helper()
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	f := &fixture{
		engine: &fakeEngine{handlers: map[*spec.Node]Handler{}},
		loader: &fakeLoader{},
		logs:   hook,
	}
	f.doc = spec.NewHTMLDocumentNode(testURL)
	spec.NewWindow("main", f.doc.Document)
	html := f.doc.Document.CreateElement("html")
	f.doc.ParserAppendChild(html)
	f.body = f.doc.Document.CreateElement("body")
	html.ParserAppendChild(f.body)

	opts = append([]Option{WithLogger(logrus.NewEntry(logger))}, opts...)
	f.ctx = NewContext(NewHost(profile), f.engine, f.loader, opts...)
	f.ctx.Install(f.doc)
	return f
}

// script returns a detached script element. Attributes are stored without
// going through the hooks, the way the tree builder does it.
func (f *fixture) script(attrs map[string]string, code string) *spec.Node {
	n := f.doc.Document.CreateElement("script")
	for k, v := range attrs {
		n.Attributes.SetNamedItem(spec.NewAttr(k, v, n))
	}
	if code != "" {
		n.ParserAppendChild(f.doc.Document.CreateTextNode(code))
	}
	return n
}

func (f *fixture) attach(t *testing.T, n *spec.Node) {
	t.Helper()
	if _, err := f.body.AppendChild(n); err != nil {
		t.Fatalf("attach: %v", err)
	}
}

func (f *fixture) warnings() []*logrus.Entry {
	var out []*logrus.Entry
	for _, e := range f.logs.AllEntries() {
		if e.Level == logrus.WarnLevel {
			out = append(out, e)
		}
	}
	return out
}

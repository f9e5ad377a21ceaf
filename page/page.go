// Package page wires a document, its script context, the engine and the
// loader together and loads markup into them.
package page

import (
	"io"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heathj/scriptrun/config"
	"github.com/heathj/scriptrun/engine"
	"github.com/heathj/scriptrun/loader"
	"github.com/heathj/scriptrun/parser"
	"github.com/heathj/scriptrun/parser/spec"
	"github.com/heathj/scriptrun/script"
)

type Page struct {
	Document *spec.Node
	Window   *spec.Window
	Scripts  *script.Context
	Engine   *engine.Runtime
	Loader   *loader.Loader

	// HookErrors holds the script failures raised while the page loaded.
	HookErrors []error
}

// New prepares an empty document at url, ready to be parsed into.
func New(url string, cfg config.Config, log *logrus.Entry) *Page {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	doc := spec.NewHTMLDocumentNode(url)
	win := spec.NewWindow("main", doc.Document)

	ctx := script.NewContext(cfg.Host(), nil, nil,
		script.WithLogger(log),
		script.WithMaxDepth(cfg.MaxExecutionDepth),
	)
	ctx.Install(doc)

	rt := engine.New(doc, log)
	ld := loader.New(rt, &http.Client{Timeout: cfg.FetchTimeout}, cfg.FetchTimeout, log)
	ctx.SetEngine(rt)
	ctx.SetLoader(ld)

	return &Page{
		Document: doc,
		Window:   win,
		Scripts:  ctx,
		Engine:   rt,
		Loader:   ld,
	}
}

// Load parses r into a new page at url, running its scripts as it goes.
func Load(r io.Reader, url string, cfg config.Config, log *logrus.Entry) (*Page, error) {
	p := New(url, cfg, log)
	if err := p.Parse(r, log); err != nil {
		return nil, err
	}
	return p, nil
}

// Parse builds r into the page's document and finishes loading it.
func (p *Page) Parse(r io.Reader, log *logrus.Entry) error {
	var opts []parser.Option
	if log != nil {
		opts = append(opts, parser.WithLogger(log))
	}
	ps := parser.NewParser(r, p.Document, opts...)
	if _, err := ps.Start(); err != nil {
		return errors.Wrap(err, "parse")
	}
	p.HookErrors = append(p.HookErrors, ps.HookErrors...)
	return nil
}

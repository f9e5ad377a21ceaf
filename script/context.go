// Package script decides when the code attached to a script element runs,
// reproducing the timing quirks of the execution profile a document is
// loaded under.
package script

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heathj/scriptrun/parser/spec"
)

// ErrExecutionDepthExceeded is returned when script run by a script node
// re-enters execution deeper than the configured maximum.
var ErrExecutionDepthExceeded = errors.New("script execution depth exceeded")

// ErrNoEngine is returned when code is due to run but no engine is attached.
var ErrNoEngine = errors.New("no script engine attached")

// Context owns the collaborators and per-document state every script node
// of a document shares. It is installed as the document's element hooks.
type Context struct {
	host    HostEnvironment
	profile ExecutionProfile
	engine  EmbeddedEngine
	loader  ExternalResourceLoader
	log     *logrus.Entry

	handlerIDs uint64
	depth      int
	maxDepth   int
}

type Option func(*Context)

// WithLogger replaces the standard logrus logger.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Context) { c.log = log }
}

// WithProfile overrides the profile derived from the host.
func WithProfile(p ExecutionProfile) Option {
	return func(c *Context) { c.profile = p }
}

// WithMaxDepth bounds how deeply script execution may re-enter itself.
// Zero, the default, leaves it unbounded.
func WithMaxDepth(depth int) Option {
	return func(c *Context) { c.maxDepth = depth }
}

func NewContext(host HostEnvironment, engine EmbeddedEngine, loader ExternalResourceLoader, opts ...Option) *Context {
	c := &Context{
		host:    host,
		profile: ProfileFor(host),
		engine:  engine,
		loader:  loader,
		log:     logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "script")
	return c
}

// Install makes c the element hooks of doc.
func (c *Context) Install(doc *spec.Node) {
	doc.Document.Hooks = c
}

func (c *Context) Profile() ExecutionProfile { return c.profile }

// SetEngine replaces the engine. Engines that bind the document usually need
// the context first, so they are attached after construction.
func (c *Context) SetEngine(engine EmbeddedEngine) { c.engine = engine }

// SetLoader replaces the external resource loader.
func (c *Context) SetLoader(loader ExternalResourceLoader) { c.loader = loader }

func (c *Context) nextHandlerID() uint64 {
	return atomic.AddUint64(&c.handlerIDs, 1) - 1
}

func (c *Context) enter() error {
	if c.maxDepth > 0 && c.depth >= c.maxDepth {
		return errors.Wrapf(ErrExecutionDepthExceeded, "limit %d", c.maxDepth)
	}
	c.depth++
	return nil
}

func (c *Context) leave() {
	c.depth--
}

var _ spec.ElementHooks = (*Context)(nil)

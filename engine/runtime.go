// Package engine runs script code with goja and exposes the document tree
// to it.
package engine

import (
	"strings"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/heathj/scriptrun/parser/spec"
	"github.com/heathj/scriptrun/script"
)

// Runtime is a goja VM bound to one document.
type Runtime struct {
	vm      *goja.Runtime
	doc     *spec.Node
	objects map[*spec.Node]*goja.Object
	nodes   map[*goja.Object]*spec.Node
	current *spec.Node
	log     *logrus.Entry
}

// New creates a VM whose global object acts as the window of doc and which
// exposes doc as document.
func New(doc *spec.Node, log *logrus.Entry) *Runtime {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	r := &Runtime{
		vm:      goja.New(),
		doc:     doc,
		objects: make(map[*spec.Node]*goja.Object),
		nodes:   make(map[*goja.Object]*spec.Node),
		log:     log.WithField("component", "engine"),
	}
	r.bindGlobals()
	return r
}

// VM returns the underlying goja runtime.
func (r *Runtime) VM() *goja.Runtime { return r.vm }

// Set defines a global.
func (r *Runtime) Set(name string, value interface{}) error {
	return r.vm.Set(name, r.toValue(value))
}

// Get reads a global. Undefined globals return nil.
func (r *Runtime) Get(name string) goja.Value {
	return r.vm.Get(name)
}

// Run executes code, padding it so error positions match the document line
// the code starts on. Element ids present at that point are visible as
// globals.
func (r *Runtime) Run(code, label string, reportLine int) error {
	r.exposeNamedElements()
	if reportLine > 1 {
		code = strings.Repeat("\n", reportLine-1) + code
	}
	if _, err := r.vm.RunScript(label, code); err != nil {
		return errors.Wrap(err, "run script")
	}
	return nil
}

// Invoke calls handler with receiver as this. context is visible to the
// handler as document.currentScript.
func (r *Runtime) Invoke(handler script.Handler, receiver *spec.Node, args []interface{}, context *spec.Node) error {
	fn, ok := r.callable(handler)
	if !ok {
		return errors.Errorf("handler of type %T is not callable", handler)
	}

	values := make([]goja.Value, len(args))
	for i, a := range args {
		values[i] = r.toValue(a)
	}

	prev := r.current
	r.current = context
	defer func() { r.current = prev }()

	if _, err := fn(r.wrap(receiver), values...); err != nil {
		return errors.Wrap(err, "invoke handler")
	}
	return nil
}

// ReadyStateChangeHandler returns the function stored as onreadystatechange
// on the script object of n, or nil when script never touched n or stored no
// function there.
func (r *Runtime) ReadyStateChangeHandler(n *spec.Node) script.Handler {
	obj, ok := r.objects[n]
	if !ok {
		return nil
	}
	fn, ok := goja.AssertFunction(obj.Get("onreadystatechange"))
	if !ok {
		return nil
	}
	return fn
}

func (r *Runtime) callable(handler script.Handler) (goja.Callable, bool) {
	switch h := handler.(type) {
	case goja.Callable:
		return h, h != nil
	case goja.Value:
		return goja.AssertFunction(h)
	}
	return nil, false
}

func (r *Runtime) toValue(v interface{}) goja.Value {
	switch t := v.(type) {
	case *spec.Node:
		return r.wrap(t)
	case goja.Value:
		return t
	}
	return r.vm.ToValue(v)
}

// throw turns a Go error into a script exception.
func (r *Runtime) throw(err error) {
	panic(r.vm.NewGoError(err))
}

var _ script.EmbeddedEngine = (*Runtime)(nil)

package script

import "github.com/heathj/scriptrun/parser/spec"

// HostEnvironment is the client configuration a document is loaded under.
type HostEnvironment interface {
	ScriptingEnabled() bool
	LegacyEmulation() bool
	EngineVersion() int
}

// EnclosingDocument is the document a script node belongs to.
type EnclosingDocument interface {
	FragmentParse() bool
	IsXML() bool
	LoadFinished() bool
	OwnsActiveWindow() bool
}

// Handler is an engine-owned callable. Only the engine that returned it
// knows how to invoke it.
type Handler interface{}

// EmbeddedEngine compiles and runs script code.
type EmbeddedEngine interface {
	// Run executes code. label names the code in error reports and
	// reportLine is the document line the code starts on.
	Run(code, label string, reportLine int) error
	// Invoke calls handler with receiver as this. context is the node on
	// whose behalf the call is made.
	Invoke(handler Handler, receiver *spec.Node, args []interface{}, context *spec.Node) error
	// ReadyStateChangeHandler returns the onreadystatechange callback
	// registered on the node's script object, or nil.
	ReadyStateChangeHandler(n *spec.Node) Handler
}

// ExternalResourceLoader fetches and runs the code a script node refers to.
// Failures are the loader's business and are never reported back.
type ExternalResourceLoader interface {
	Load(n *spec.Node, reference, charset string)
}

func documentOf(n *spec.Node) *spec.Document {
	if n.OwnerDocument == nil {
		return nil
	}
	return n.OwnerDocument.Document
}

var _ EnclosingDocument = (*spec.Document)(nil)

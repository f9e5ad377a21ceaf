package script

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/heathj/scriptrun/parser/spec"
)

// AttributeWillChange decides whether setting src runs the script. Legacy
// timing always runs it; otherwise only a script that had neither a src nor
// inline code runs.
func (c *Context) AttributeWillChange(n *spec.Node, ns spec.Namespace, qualifiedName, value string, cloning bool) bool {
	if n.Kind != spec.ScriptElement || cloning || ns != spec.NoNamespace {
		return false
	}
	if !strings.EqualFold(qualifiedName, spec.SrcAttr) {
		return false
	}
	if c.profile.UsesLegacyTiming {
		return true
	}
	return n.GetAttributeNS(spec.NoNamespace, spec.SrcAttr) == "" && n.FirstChild == nil
}

func (c *Context) AttributeChanged(n *spec.Node, ns spec.Namespace, qualifiedName, value string) error {
	return c.Execute(n, true)
}

// AllChildrenAdded runs a script once its subtree is in the document, unless
// legacy timing defers it until the document has loaded.
func (c *Context) AllChildrenAdded(n *spec.Node) error {
	if n.Kind != spec.ScriptElement {
		return nil
	}
	doc := documentOf(n)
	if doc == nil || doc.IsXML() {
		return nil
	}
	if c.log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		c.log.WithField("node", n.AsXML()).Debug("script node added")
	}

	if !c.profile.UsesLegacyTiming || doc.LoadFinished() || !n.IsDeferred() {
		if err := c.SetReadyStateComplete(n); err != nil {
			return err
		}
		return c.Execute(n, true)
	}
	return nil
}

// FlushDeferred runs the deferred scripts of doc in document order. The
// tree builder calls it once parsing is over, before the document is marked
// loaded.
func (c *Context) FlushDeferred(doc *spec.Node) error {
	if !c.host.ScriptingEnabled() || !c.profile.UsesLegacyTiming || doc.Document.IsXML() {
		return nil
	}
	for _, n := range doc.GetElementsByTagName("script") {
		if n.Kind != spec.ScriptElement || !n.IsDeferred() {
			continue
		}
		if err := c.SetReadyStateComplete(n); err != nil {
			return err
		}
		if err := c.Execute(n, true); err != nil {
			return err
		}
	}
	return nil
}

package script

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/heathj/scriptrun/parser/spec"
)

var javaScriptTypes = map[string]bool{
	"text/javascript":          true,
	"text/ecmascript":          true,
	"text/jscript":             true,
	"application/javascript":   true,
	"application/x-javascript": true,
	"application/ecmascript":   true,
}

// IsJavaScript reports whether the type and language attribute values name
// JavaScript. Language wins over type; when both are empty the code is
// assumed to be JavaScript.
func IsJavaScript(typ, language string) bool {
	if language != "" {
		l := strings.ToLower(language)
		return strings.HasPrefix(l, "javascript") || l == "jscript" || l == "ecmascript"
	}
	if typ != "" {
		return javaScriptTypes[strings.ToLower(strings.TrimSpace(typ))]
	}
	return true
}

// IsExecutionNeeded reports whether the code of n may run right now.
func (c *Context) IsExecutionNeeded(n *spec.Node) bool {
	if !c.host.ScriptingEnabled() {
		return false
	}

	doc := documentOf(n)
	if doc == nil {
		return false
	}

	// innerHTML and friends never run the scripts they insert
	if doc.FragmentParse() {
		return false
	}

	for o := n; o != nil; o = o.ParentNode {
		if o.NodeType != spec.ElementNode {
			continue
		}
		switch o.Kind {
		case spec.InlineFrameElement, spec.NoFramesElement, spec.NoScriptElement:
			return false
		}
	}

	// the window has navigated away, possibly because of an earlier script
	if !doc.OwnsActiveWindow() {
		return false
	}

	typ := n.GetAttribute(spec.TypeAttr)
	language := n.GetAttribute(spec.LanguageAttr)
	if !IsJavaScript(typ, language) {
		c.log.WithFields(logrus.Fields{
			"type":     typ,
			"language": language,
		}).Warn("script is not JavaScript, skipping execution")
		return false
	}

	// detached, or still being cloned
	if n.GetRootNode() != n.OwnerDocument {
		return false
	}

	return true
}

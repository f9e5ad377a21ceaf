package spec

import "strings"

type Namespace uint

const (
	NoNamespace Namespace = iota
	Htmlns
	Mathmlns
	Svgns
	Xlinkns
	Xmlns
	Xmlnsns
)

// Element is an individual element in the document tree.
// https:domspec.whatwg.org/#interface-element
type Element struct {
	NamespaceURI      Namespace
	Prefix, LocalName string
	Kind              ElementKind
	Attributes        *NamedNodeMap

	*HTMLElement
}

func (e *Element) node() *Node {
	return e.Attributes.AssociatedElement
}

func (e *Element) HasAttributes() bool { return e.Attributes.Length > 0 }

func (e *Element) GetAttributeNames() []string { return e.Attributes.Names() }

// GetAttribute returns the attribute value, or the empty string when the
// attribute is not defined.
func (e *Element) GetAttribute(qualifiedName string) string {
	v, _ := e.LookupAttribute(qualifiedName)
	return v
}

// LookupAttribute returns the attribute value and whether it is defined at
// all. A defined attribute may have an empty value.
func (e *Element) LookupAttribute(qualifiedName string) (string, bool) {
	attr := e.Attributes.GetNamedItem(qualifiedName)
	if attr == nil {
		return "", false
	}
	return attr.Value, true
}

// GetAttributeNS returns the value of the attribute with localName in
// namespace, or the empty string.
func (e *Element) GetAttributeNS(namespace Namespace, localName string) string {
	if attr := e.Attributes.GetNamedItemNS(namespace, localName); attr != nil {
		return attr.Value
	}
	return ""
}

func (e *Element) HasAttribute(qualifiedName string) bool {
	return e.Attributes.GetNamedItem(qualifiedName) != nil
}

// SetAttribute stores an unnamespaced attribute. Errors come from script run
// by the element's hooks in reaction to the change.
func (e *Element) SetAttribute(qualifiedName, value string) error {
	return e.setAttributeValue(NoNamespace, qualifiedName, value, false)
}

func (e *Element) SetAttributeNS(namespace Namespace, qualifiedName, value string) error {
	return e.setAttributeValue(namespace, qualifiedName, value, false)
}

func (e *Element) setAttributeValue(namespace Namespace, qualifiedName, value string, cloning bool) error {
	n := e.node()
	h := n.hooks()
	notify := false
	if h != nil {
		notify = h.AttributeWillChange(n, namespace, qualifiedName, value, cloning)
	}

	attr := NewAttr(qualifiedName, value, n)
	attr.Namespace = namespace
	e.Attributes.SetNamedItem(attr)

	if notify {
		return h.AttributeChanged(n, namespace, qualifiedName, value)
	}
	return nil
}

func (e *Element) RemoveAttribute(qualifiedName string) {
	e.Attributes.RemoveNamedItem(qualifiedName)
}

// ElementKind tags the element variants that other code needs to tell apart.
type ElementKind uint

const (
	GenericElement ElementKind = iota
	ScriptElement
	InlineFrameElement
	NoFramesElement
	NoScriptElement
)

// KindOf maps a tag name to its ElementKind.
func KindOf(name string) ElementKind {
	switch strings.ToLower(name) {
	case "script":
		return ScriptElement
	case "iframe":
		return InlineFrameElement
	case "noframes":
		return NoFramesElement
	case "noscript":
		return NoScriptElement
	default:
		return GenericElement
	}
}

package spec

// Attribute names understood by script elements.
const (
	SrcAttr      = "src"
	TypeAttr     = "type"
	LanguageAttr = "language"
	CharsetAttr  = "charset"
	EventAttr    = "event"
	ForAttr      = "for"
	DeferAttr    = "defer"
)

// HTMLScript is the per-element state of a script element.
type HTMLScript struct {
	ReadyState ReadyState
}

// IsDeferred reports whether the defer attribute is defined, whatever its value.
func (e *Element) IsDeferred() bool {
	return e.HasAttribute(DeferAttr)
}

// InlineCode returns the data of the first child when it is character data.
func (n *Node) InlineCode() (string, bool) {
	c := n.FirstChild
	if c == nil {
		return "", false
	}
	switch c.NodeType {
	case TextNode:
		return c.Text.Data, true
	case CommentNode:
		return c.Comment.Data, true
	}
	return "", false
}

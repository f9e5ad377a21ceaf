package spec

import (
	"strings"
)

// https://html.spec.whatwg.org/#escapingString
func escapeString(s string, attrVal bool) string {
	s = strings.Replace(s, "&", "&amp;", -1)
	s = strings.Replace(s, "\u00A0", "&nbsp;", -1)
	if attrVal {
		s = strings.Replace(s, "\"", "&quot;", -1)
	} else {
		s = strings.Replace(s, "<", "&lt;", -1)
		s = strings.Replace(s, ">", "&gt;", -1)
	}

	return s
}

// AsXML renders the subtree as indented XML. Script elements are always
// written in expanded form and their code is wrapped in a commented CDATA
// section so the output still reads as HTML.
func (n *Node) AsXML() string {
	var b strings.Builder
	n.printXML(&b, "")
	return b.String()
}

func (n *Node) printXML(b *strings.Builder, indent string) {
	switch n.NodeType {
	case DocumentNode:
		for _, child := range n.ChildNodes {
			child.printXML(b, indent)
		}
	case TextNode:
		b.WriteString(indent + escapeString(n.Text.Data, false) + "\n")
	case CommentNode:
		b.WriteString(indent + "<!--" + n.Comment.Data + "-->\n")
	case ElementNode:
		b.WriteString(indent + "<" + n.NodeName)
		for _, k := range n.GetAttributeNames() {
			b.WriteString(" " + k + "=\"" + escapeString(n.Attributes.Attrs[k].Value, true) + "\"")
		}
		if n.Kind == ScriptElement {
			b.WriteString(">\n")
			if code, ok := n.InlineCode(); ok {
				b.WriteString("//<![CDATA[\n")
				b.WriteString(code + "\n")
				b.WriteString("//]]>\n")
			}
			b.WriteString(indent + "</" + n.NodeName + ">\n")
			return
		}
		if !n.HasChildNodes() {
			b.WriteString("/>\n")
			return
		}
		b.WriteString(">\n")
		for _, child := range n.ChildNodes {
			child.printXML(b, indent+"  ")
		}
		b.WriteString(indent + "</" + n.NodeName + ">\n")
	}
}

// AsText returns the text a reader would see. Script content is never visible.
func (n *Node) AsText() string {
	var b strings.Builder
	n.Walk(func(c *Node) bool {
		if c.NodeType == ElementNode && c.Kind == ScriptElement {
			return true
		}
		if c.NodeType == TextNode && !insideScript(c) {
			b.WriteString(c.Text.Data)
		}
		return true
	})
	return b.String()
}

func insideScript(n *Node) bool {
	for p := n.ParentNode; p != nil; p = p.ParentNode {
		if p.NodeType == ElementNode && p.Kind == ScriptElement {
			return true
		}
	}
	return false
}

// InnerHTML serializes the children of n as HTML.
// https://html.spec.whatwg.org/#serialising-html-fragments
func (n *Node) InnerHTML() string {
	var b strings.Builder
	switch n.NodeName {
	case "basefont", "bgsound", "frame", "keygen":
		return ""
	}
	for _, child := range n.ChildNodes {
		switch child.NodeType {
		case ElementNode:
			b.WriteString("<" + child.NodeName)
			for _, k := range child.GetAttributeNames() {
				b.WriteString(" " + k + "=\"" + escapeString(child.Attributes.Attrs[k].Value, true) + "\"")
			}
			b.WriteString(">")
			if IsVoidElement(child.NodeName) {
				continue
			}
			b.WriteString(child.InnerHTML() + "</" + child.NodeName + ">")
		case TextNode:
			switch n.NodeName {
			case "style", "script", "xmp", "iframe", "noembed", "noframes", "plaintext", "noscript":
				b.WriteString(child.Text.Data)
			default:
				b.WriteString(escapeString(child.Text.Data, false))
			}
		case CommentNode:
			b.WriteString("<!--" + child.Comment.Data + "-->")
		}
	}
	return b.String()
}

// IsVoidElement reports whether name is an element that never has children.
func IsVoidElement(name string) bool {
	switch name {
	case "area", "base", "br", "col", "embed", "hr", "img", "input", "keygen",
		"link", "meta", "param", "source", "track", "wbr":
		return true
	}
	return false
}

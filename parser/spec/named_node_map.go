package spec

import "strings"

func NewNamedNodeMap(attrs map[string]string, oe *Node) *NamedNodeMap {
	a := make(map[string]*Attr, len(attrs))
	for k, v := range attrs {
		a[k] = NewAttr(k, v, oe)
	}
	return &NamedNodeMap{
		Length:            len(a),
		Attrs:             a,
		AssociatedElement: oe,
	}
}

type NamedNodeMap struct {
	Length            int
	Attrs             map[string]*Attr
	AssociatedElement *Node
}

// Names returns the qualified names of all attributes, sorted.
func (n *NamedNodeMap) Names() []string {
	return sortedKeys(n.Attrs)
}

func (n *NamedNodeMap) GetNamedItem(qn string) *Attr {
	return n.getAttributeByName(qn)
}

func (n *NamedNodeMap) normalize(qn string) string {
	oe := n.AssociatedElement
	if oe != nil && oe.Element != nil &&
		oe.Element.NamespaceURI == Htmlns &&
		(oe.OwnerDocument == nil || oe.OwnerDocument.Document == nil || !oe.OwnerDocument.Document.IsXML()) {
		return strings.ToLower(qn)
	}
	return qn
}

func (n *NamedNodeMap) getAttributeByName(qn string) *Attr {
	if v, ok := n.Attrs[n.normalize(qn)]; ok {
		return v
	}

	return nil
}

func (n *NamedNodeMap) getAttributeByNSLocalName(ns Namespace, ln string) *Attr {
	ln = n.normalize(ln)
	for _, v := range n.Attrs {
		if v.Namespace == ns && v.LocalName == ln {
			return v
		}
	}

	return nil
}

// SetNamedItem stores s, replacing any attribute with the same name, and
// returns the attribute it replaced.
func (n *NamedNodeMap) SetNamedItem(s *Attr) *Attr {
	if s == nil {
		return nil
	}
	s.OwnerElement = n.AssociatedElement
	s.Name = n.normalize(s.Name)
	s.LocalName = n.normalize(s.LocalName)

	old := n.Attrs[s.Name]
	n.Attrs[s.Name] = s
	n.Length = len(n.Attrs)
	return old
}

func (n *NamedNodeMap) GetNamedItemNS(ns Namespace, ln string) *Attr {
	return n.getAttributeByNSLocalName(ns, ln)
}

func (n *NamedNodeMap) RemoveNamedItem(qn string) *Attr {
	qn = n.normalize(qn)
	old, ok := n.Attrs[qn]
	if !ok {
		return nil
	}
	delete(n.Attrs, qn)
	n.Length = len(n.Attrs)
	return old
}

package spec

import "strings"

// Attr is https:domspec.whatwg.org/#attr
type Attr struct {
	Namespace    Namespace
	Prefix       string
	LocalName    string
	Name         string
	Value        string
	OwnerElement *Node
}

// NewAttr splits an optional "prefix:" off name.
func NewAttr(name, value string, oe *Node) *Attr {
	a := &Attr{
		Name:         name,
		LocalName:    name,
		Value:        value,
		OwnerElement: oe,
	}
	if i := strings.IndexByte(name, ':'); i > 0 {
		a.Prefix = name[:i]
		a.LocalName = name[i+1:]
	}
	return a
}

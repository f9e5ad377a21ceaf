package spec

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type NodeType uint16

const (
	ElementNode NodeType = iota + 1
	AttrNode
	TextNode
	CDATASectionNode
	ProcessingInstructionNode
	CommentNode
	DocumentNode
	DocumentTypeNode
	DocumentFragmentNode
)

// ErrHierarchy is returned when an insertion would make a node its own ancestor.
var ErrHierarchy = errors.New("hierarchy request error")

// ErrNotFound is returned when a reference node is not a child of the parent.
var ErrNotFound = errors.New("not found error")

// Position is the source span a node was parsed from. Nodes created by
// script carry the zero Position.
type Position struct {
	StartLine, StartColumn, EndLine, EndColumn int
}

// ElementHooks lets an element kind react to changes of its own attributes
// and to its subtree being attached to a document.
type ElementHooks interface {
	// AttributeWillChange runs before the value is stored and reports
	// whether AttributeChanged must run once it has been.
	AttributeWillChange(n *Node, ns Namespace, qualifiedName, value string, cloning bool) bool
	AttributeChanged(n *Node, ns Namespace, qualifiedName, value string) error
	AllChildrenAdded(n *Node) error
}

// NewComment returns a comment node with its Data section filled.
func NewComment(data string, od *Node) *Node {
	return &Node{
		NodeType:      CommentNode,
		NodeName:      "#comment",
		OwnerDocument: od,
		Comment:       NewCommentData(data),
	}
}

func NewTextNode(od *Node, text string) *Node {
	return &Node{
		NodeType:      TextNode,
		NodeName:      "#text",
		OwnerDocument: od,
		Text:          NewText(text),
	}
}

func NewDOMElement(od *Node, name string, namespace Namespace, optionals ...string) *Node {
	var prefix string
	if len(optionals) >= 1 {
		prefix = optionals[0]
	}
	name = strings.ToLower(name)
	n := &Node{
		NodeType:      ElementNode,
		NodeName:      name,
		OwnerDocument: od,
		Element: &Element{
			NamespaceURI: namespace,
			Prefix:       prefix,
			LocalName:    name,
			Kind:         KindOf(name),
			HTMLElement:  NewHTMLElement(name),
		},
	}
	n.Attributes = NewNamedNodeMap(nil, n)
	return n
}

// https://dom.whatwg.org/#node
type Node struct {
	NodeType                                                        NodeType
	NodeName                                                        string
	OwnerDocument                                                   *Node
	ParentNode, FirstChild, LastChild, PreviousSibling, NextSibling *Node
	ChildNodes                                                      NodeList
	Position

	// Node types
	*Element
	*Text
	*Comment
	*Document
}

func serializeNodeType(node *Node, ident int) string {
	switch node.NodeType {
	case ElementNode:
		e := "<"
		switch node.Element.NamespaceURI {
		case Svgns:
			e += "svg "
		case Mathmlns:
			e += "math "
		}
		e += node.NodeName
		e += ">"
		if node.Attributes != nil && node.Attributes.Length != 0 {
			spaces := "| "
			for i := 1; i < ident; i++ {
				spaces += "  "
			}
			for _, name := range node.Attributes.Names() {
				attr := node.Attributes.Attrs[name]
				e += "\n" + spaces + name + "=\"" + attr.Value + "\""
			}
		}
		return e
	case TextNode:
		return "\"" + node.Text.Data + "\""
	case CommentNode:
		return "<!-- " + node.Comment.Data + " -->"
	case DocumentNode:
		return "#document"
	default:
		logrus.WithField("method", "serializeNodeType").Errorf("cannot serialize node type %d", node.NodeType)
		return ""
	}
}

func (node *Node) serialize(ident int) string {
	ser := serializeNodeType(node, ident+1) + "\n"
	if node.NodeType != DocumentNode {
		spaces := "| "
		for i := 1; i < ident; i++ {
			spaces += "  "
		}
		ser = spaces + ser
	}
	for _, child := range node.ChildNodes {
		ser += child.serialize(ident + 1)
	}

	return ser
}

// String renders the subtree in the html5lib tree-dump format.
func (node *Node) String() string {
	return strings.TrimRight(node.serialize(0), "\n")
}

// GetRootNode walks ParentNode links up to the topmost ancestor.
func (n *Node) GetRootNode() *Node {
	var prev *Node
	for i := n; i != nil; i = i.ParentNode {
		prev = i
	}

	return prev
}

// IsConnected reports whether the node's root is its owner document.
func (n *Node) IsConnected() bool {
	root := n.GetRootNode()
	if root == nil || root.NodeType != DocumentNode {
		return false
	}
	return n.NodeType == DocumentNode || root == n.OwnerDocument
}

func (n *Node) HasChildNodes() bool {
	return len(n.ChildNodes) > 0
}

// Contains reports whether on is n or one of its descendants.
func (n *Node) Contains(on *Node) bool {
	for i := on; i != nil; i = i.ParentNode {
		if i == n {
			return true
		}
	}
	return false
}

func (n *Node) hooks() ElementHooks {
	if n.OwnerDocument == nil || n.OwnerDocument.Document == nil {
		return nil
	}
	return n.OwnerDocument.Document.Hooks
}

// CloneNode copies n. Attributes are stored on the copy with the cloning flag
// set, so element hooks see the copy as a clone. The copy is detached.
func (n *Node) CloneNode(deep bool) *Node {
	var copy *Node
	switch n.NodeType {
	case ElementNode:
		copy = NewDOMElement(n.OwnerDocument, n.NodeName, n.Element.NamespaceURI, n.Element.Prefix)
		for _, name := range n.Attributes.Names() {
			attr := n.Attributes.Attrs[name]
			// clones never trigger attribute hooks that return errors
			_ = copy.Element.setAttributeValue(attr.Namespace, attr.Name, attr.Value, true)
		}
	case TextNode:
		copy = NewTextNode(n.OwnerDocument, n.Text.Data)
	case CommentNode:
		copy = NewComment(n.Comment.Data, n.OwnerDocument)
	case DocumentNode:
		copy = &Node{NodeType: DocumentNode, NodeName: n.NodeName}
		copy.Document = &Document{
			URL:         n.Document.URL,
			Type:        n.Document.Type,
			ContentType: n.Document.ContentType,
			ReadyState:  Loading,
			self:        copy,
		}
		copy.OwnerDocument = copy
	default:
		copy = &Node{NodeType: n.NodeType, NodeName: n.NodeName, OwnerDocument: n.OwnerDocument}
	}
	copy.Position = n.Position

	if deep {
		for _, child := range n.ChildNodes {
			copy.ParserAppendChild(child.CloneNode(true))
		}
	}

	return copy
}

// ParserAppendChild links on as the last child of n without notifying any
// hooks. The tree builder uses it and calls NotifyAllChildrenAdded once the
// element's end tag has been seen.
func (n *Node) ParserAppendChild(on *Node) *Node {
	if on.ParentNode != nil {
		on.ParentNode.RemoveChild(on)
	}
	if n.LastChild != nil {
		on.PreviousSibling = n.LastChild
		n.LastChild.NextSibling = on
	} else {
		n.FirstChild = on
	}
	on.ParentNode = n
	n.LastChild = on
	n.ChildNodes = append(n.ChildNodes, on)
	return on
}

// AppendChild links on as the last child of n. When n is attached to its
// document, every element of the inserted subtree is told it has been added.
// https://dom.whatwg.org/#concept-node-append
func (n *Node) AppendChild(on *Node) (*Node, error) {
	if on.Contains(n) {
		return nil, errors.Wrapf(ErrHierarchy, "append %s to %s", on.NodeName, n.NodeName)
	}
	n.ParserAppendChild(on)
	if err := n.notifyInserted(on); err != nil {
		return on, err
	}
	return on, nil
}

// InsertBefore links on immediately before child. A nil child appends.
// https://dom.spec.whatwg.org/#concept-node-pre-insert
func (n *Node) InsertBefore(on, child *Node) (*Node, error) {
	if child != nil && n.ChildNodes.Contains(child) == -1 {
		return nil, errors.Wrapf(ErrNotFound, "%s is not a child of %s", child.NodeName, n.NodeName)
	}
	// inserting a node before itself keeps it where it is
	if child == on {
		child = on.NextSibling
	}
	if child == nil {
		return n.AppendChild(on)
	}
	if on.Contains(n) {
		return nil, errors.Wrapf(ErrHierarchy, "insert %s into %s", on.NodeName, n.NodeName)
	}
	if on.ParentNode != nil {
		on.ParentNode.RemoveChild(on)
	}
	i := n.ChildNodes.Contains(child)
	if i == -1 {
		return nil, errors.Wrapf(ErrNotFound, "%s left %s while %s was removed", child.NodeName, n.NodeName, on.NodeName)
	}

	n.ChildNodes.WedgeIn(i, on)
	on.ParentNode = n
	on.NextSibling = child
	on.PreviousSibling = child.PreviousSibling
	if child.PreviousSibling != nil {
		child.PreviousSibling.NextSibling = on
	} else {
		n.FirstChild = on
	}
	child.PreviousSibling = on

	if err := n.notifyInserted(on); err != nil {
		return on, err
	}
	return on, nil
}

// RemoveChild unlinks child from n and returns it, or nil if child is not a
// child of n.
func (n *Node) RemoveChild(child *Node) *Node {
	node := n.ChildNodes.Remove(n.ChildNodes.Contains(child))
	if node == nil {
		return nil
	}
	if node.PreviousSibling != nil {
		node.PreviousSibling.NextSibling = node.NextSibling
	} else {
		n.FirstChild = node.NextSibling
	}
	if node.NextSibling != nil {
		node.NextSibling.PreviousSibling = node.PreviousSibling
	} else {
		n.LastChild = node.PreviousSibling
	}
	node.ParentNode = nil
	node.PreviousSibling = nil
	node.NextSibling = nil
	return node
}

func (n *Node) notifyInserted(on *Node) error {
	if !n.IsConnected() {
		return nil
	}
	return on.notifySubtree()
}

// notifySubtree runs the hooks for n and then for its descendants. The child
// list is copied first because hooks may run script that edits the tree.
func (n *Node) notifySubtree() error {
	if err := n.NotifyAllChildrenAdded(); err != nil {
		return err
	}
	children := make(NodeList, len(n.ChildNodes))
	copy(children, n.ChildNodes)
	for _, child := range children {
		if err := child.notifySubtree(); err != nil {
			return err
		}
	}
	return nil
}

// NotifyAllChildrenAdded tells the element's hooks that it and all of its
// descendants are now linked into the tree.
func (n *Node) NotifyAllChildrenAdded() error {
	if n.NodeType != ElementNode {
		return nil
	}
	h := n.hooks()
	if h == nil {
		return nil
	}
	return h.AllChildrenAdded(n)
}

// Walk visits n and its descendants in document order until fn returns false.
func (n *Node) Walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, child := range n.ChildNodes {
		if !child.Walk(fn) {
			return false
		}
	}
	return true
}

// GetElementsByTagName returns the descendant elements named name, in
// document order.
func (n *Node) GetElementsByTagName(name string) NodeList {
	name = strings.ToLower(name)
	var found NodeList
	for _, child := range n.ChildNodes {
		child.Walk(func(c *Node) bool {
			if c.NodeType == ElementNode && c.NodeName == name {
				found = append(found, c)
			}
			return true
		})
	}
	return found
}

// GetElementByID returns the first descendant element whose id attribute
// equals id.
func (n *Node) GetElementByID(id string) *Node {
	var found *Node
	n.Walk(func(c *Node) bool {
		if c.NodeType != ElementNode {
			return true
		}
		if v, ok := c.LookupAttribute("id"); ok && v == id {
			found = c
			return false
		}
		return true
	})
	return found
}

func sortedKeys(m map[string]*Attr) []string {
	keys := make([]string, 0, len(m))
	for name := range m {
		keys = append(keys, name)
	}
	sort.Strings(keys)
	return keys
}

package spec

// ReadyState is the coarse loading lifecycle shared by documents and the
// elements that report progress.
type ReadyState string

const (
	Uninitialized ReadyState = "uninitialized"
	Loading       ReadyState = "loading"
	Loaded        ReadyState = "loaded"
	Interactive   ReadyState = "interactive"
	Complete      ReadyState = "complete"
)

// Document is https:domspec.whatwg.org/#interface-document
type Document struct {
	URL, ContentType, CharacterSet string
	// Type is "html" or "xml".
	Type       string
	ReadyState ReadyState
	// ParsingSnippet is set while markup handed to innerHTML-style setters is
	// being parsed into the document.
	ParsingSnippet bool
	Window         *Window
	Hooks          ElementHooks

	self *Node
}

func newDocumentNode(url, typ, contentType string) *Node {
	n := &Node{
		NodeType: DocumentNode,
		NodeName: "#document",
	}
	n.Document = &Document{
		URL:          url,
		Type:         typ,
		ContentType:  contentType,
		CharacterSet: "UTF-8",
		ReadyState:   Loading,
		self:         n,
	}
	n.OwnerDocument = n
	return n
}

func NewHTMLDocumentNode(url string) *Node {
	return newDocumentNode(url, "html", "text/html")
}

func NewXMLDocumentNode(url string) *Node {
	return newDocumentNode(url, "xml", "application/xml")
}

// DocumentNode returns the node the document is embedded in.
func (d *Document) DocumentNode() *Node { return d.self }

func (d *Document) IsXML() bool { return d.Type == "xml" }

func (d *Document) FragmentParse() bool { return d.ParsingSnippet }

func (d *Document) LoadFinished() bool { return d.ReadyState == Complete }

// OwnsActiveWindow is false once the window the document was rendered into
// has moved on to another document.
func (d *Document) OwnsActiveWindow() bool {
	return d.Window == nil || d.Window.EnclosedPage == d
}

func (d *Document) FinishLoading() {
	d.ReadyState = Complete
}

func (d *Document) CreateElement(localName string) *Node {
	ns := Htmlns
	if d.IsXML() {
		ns = NoNamespace
	}
	return NewDOMElement(d.self, localName, ns)
}

func (d *Document) CreateTextNode(data string) *Node {
	return NewTextNode(d.self, data)
}

func (d *Document) CreateComment(data string) *Node {
	return NewComment(data, d.self)
}

// Window is the browsing context a document is displayed in.
type Window struct {
	Name         string
	EnclosedPage *Document
}

// NewWindow returns a window displaying doc.
func NewWindow(name string, doc *Document) *Window {
	w := &Window{Name: name}
	w.Navigate(doc)
	return w
}

// Navigate replaces the document shown in the window.
func (w *Window) Navigate(doc *Document) {
	w.EnclosedPage = doc
	if doc != nil {
		doc.Window = w
	}
}

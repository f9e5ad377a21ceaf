package spec

func NewHTMLElement(name string) *HTMLElement {
	elem := &HTMLElement{}
	switch name {
	case "script":
		elem.HTMLScript = &HTMLScript{ReadyState: Uninitialized}
	}

	return elem
}

type HTMLElement struct {
	*HTMLScript
}

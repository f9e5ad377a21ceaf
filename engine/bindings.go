package engine

import (
	"strings"

	"github.com/dop251/goja"

	"github.com/heathj/scriptrun/parser"
	"github.com/heathj/scriptrun/parser/spec"
)

type goFunc = func(call goja.FunctionCall) goja.Value

func (r *Runtime) bindGlobals() {
	global := r.vm.GlobalObject()
	_ = global.Set("window", global)
	_ = global.Set("self", global)
	_ = global.Set("document", r.bindDocument())
}

// exposeNamedElements makes each element id readable as a global that
// resolves through getElementById, unless script already owns a global of
// that name. Assigning to such a global replaces it with a plain value.
func (r *Runtime) exposeNamedElements() {
	global := r.vm.GlobalObject()
	r.doc.Walk(func(n *spec.Node) bool {
		if n.NodeType != spec.ElementNode {
			return true
		}
		id := n.GetAttribute("id")
		if id == "" || global.Get(id) != nil {
			return true
		}
		get := func(goja.FunctionCall) goja.Value {
			return r.wrap(r.doc.GetElementByID(id))
		}
		set := func(call goja.FunctionCall) goja.Value {
			_ = global.DefineDataProperty(id, call.Argument(0), goja.FLAG_TRUE, goja.FLAG_TRUE, goja.FLAG_TRUE)
			return goja.Undefined()
		}
		_ = global.DefineAccessorProperty(id, r.vm.ToValue(get), r.vm.ToValue(set), goja.FLAG_TRUE, goja.FLAG_FALSE)
		return true
	})
}

func (r *Runtime) getter(obj *goja.Object, name string, get goFunc) {
	_ = obj.DefineAccessorProperty(name, r.vm.ToValue(get), nil, goja.FLAG_TRUE, goja.FLAG_TRUE)
}

func (r *Runtime) accessor(obj *goja.Object, name string, get, set goFunc) {
	_ = obj.DefineAccessorProperty(name, r.vm.ToValue(get), r.vm.ToValue(set), goja.FLAG_TRUE, goja.FLAG_TRUE)
}

func (r *Runtime) bindDocument() *goja.Object {
	doc := r.doc
	obj := r.vm.NewObject()
	r.objects[doc] = obj
	r.nodes[obj] = doc
	r.bindNode(obj, doc)

	r.getter(obj, "URL", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(doc.Document.URL)
	})
	r.getter(obj, "readyState", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(string(doc.Document.ReadyState))
	})
	r.getter(obj, "currentScript", func(goja.FunctionCall) goja.Value {
		return r.wrap(r.current)
	})
	r.getter(obj, "documentElement", func(goja.FunctionCall) goja.Value {
		for _, c := range doc.ChildNodes {
			if c.NodeType == spec.ElementNode {
				return r.wrap(c)
			}
		}
		return goja.Null()
	})
	for _, name := range []string{"head", "body"} {
		name := name
		r.getter(obj, name, func(goja.FunctionCall) goja.Value {
			if found := doc.GetElementsByTagName(name); len(found) > 0 {
				return r.wrap(found[0])
			}
			return goja.Null()
		})
	}

	_ = obj.Set("getElementById", func(call goja.FunctionCall) goja.Value {
		return r.wrap(doc.GetElementByID(call.Argument(0).String()))
	})
	_ = obj.Set("getElementsByTagName", func(call goja.FunctionCall) goja.Value {
		return r.list(doc.GetElementsByTagName(call.Argument(0).String()))
	})
	_ = obj.Set("createElement", func(call goja.FunctionCall) goja.Value {
		return r.wrap(doc.Document.CreateElement(call.Argument(0).String()))
	})
	_ = obj.Set("createTextNode", func(call goja.FunctionCall) goja.Value {
		return r.wrap(doc.Document.CreateTextNode(call.Argument(0).String()))
	})
	_ = obj.Set("createComment", func(call goja.FunctionCall) goja.Value {
		return r.wrap(doc.Document.CreateComment(call.Argument(0).String()))
	})
	return obj
}

func (r *Runtime) list(nodes spec.NodeList) goja.Value {
	items := make([]interface{}, len(nodes))
	for i, n := range nodes {
		items[i] = r.wrap(n)
	}
	return r.vm.NewArray(items...)
}

// wrap returns the script object of n, creating it on first use so the same
// node always maps to the same object.
func (r *Runtime) wrap(n *spec.Node) goja.Value {
	if n == nil {
		return goja.Null()
	}
	if obj, ok := r.objects[n]; ok {
		return obj
	}

	obj := r.vm.NewObject()
	r.objects[n] = obj
	r.nodes[obj] = n
	r.bindNode(obj, n)
	switch n.NodeType {
	case spec.ElementNode:
		r.bindElement(obj, n)
	case spec.TextNode, spec.CommentNode:
		r.bindCharacterData(obj, n)
	}
	return obj
}

// unwrap finds the node behind a script object made by wrap.
func (r *Runtime) unwrap(v goja.Value) *spec.Node {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	return r.nodes[obj]
}

func (r *Runtime) mustUnwrap(v goja.Value) *spec.Node {
	n := r.unwrap(v)
	if n == nil {
		panic(r.vm.NewTypeError("argument is not a node"))
	}
	return n
}

func (r *Runtime) bindNode(obj *goja.Object, n *spec.Node) {
	r.getter(obj, "nodeType", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(int(n.NodeType))
	})
	r.getter(obj, "nodeName", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(n.NodeName)
	})
	r.getter(obj, "parentNode", func(goja.FunctionCall) goja.Value {
		return r.wrap(n.ParentNode)
	})
	r.getter(obj, "firstChild", func(goja.FunctionCall) goja.Value {
		return r.wrap(n.FirstChild)
	})
	r.getter(obj, "lastChild", func(goja.FunctionCall) goja.Value {
		return r.wrap(n.LastChild)
	})
	r.getter(obj, "nextSibling", func(goja.FunctionCall) goja.Value {
		return r.wrap(n.NextSibling)
	})
	r.getter(obj, "childNodes", func(goja.FunctionCall) goja.Value {
		return r.list(n.ChildNodes)
	})

	_ = obj.Set("appendChild", func(call goja.FunctionCall) goja.Value {
		child := r.mustUnwrap(call.Argument(0))
		if _, err := n.AppendChild(child); err != nil {
			r.throw(err)
		}
		return call.Argument(0)
	})
	_ = obj.Set("insertBefore", func(call goja.FunctionCall) goja.Value {
		child := r.mustUnwrap(call.Argument(0))
		ref := r.unwrap(call.Argument(1))
		if _, err := n.InsertBefore(child, ref); err != nil {
			r.throw(err)
		}
		return call.Argument(0)
	})
	_ = obj.Set("removeChild", func(call goja.FunctionCall) goja.Value {
		return r.wrap(n.RemoveChild(r.mustUnwrap(call.Argument(0))))
	})
	_ = obj.Set("cloneNode", func(call goja.FunctionCall) goja.Value {
		return r.wrap(n.CloneNode(call.Argument(0).ToBoolean()))
	})
}

func (r *Runtime) bindElement(obj *goja.Object, n *spec.Node) {
	r.getter(obj, "tagName", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(strings.ToUpper(n.NodeName))
	})
	r.accessor(obj, "id", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(n.GetAttribute("id"))
	}, func(call goja.FunctionCall) goja.Value {
		if err := n.SetAttribute("id", call.Argument(0).String()); err != nil {
			r.throw(err)
		}
		return goja.Undefined()
	})
	r.accessor(obj, "innerHTML", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(n.InnerHTML())
	}, func(call goja.FunctionCall) goja.Value {
		for n.FirstChild != nil {
			n.RemoveChild(n.FirstChild)
		}
		if _, err := parser.ParseHTMLFragment(n, call.Argument(0).String(), parser.WithLogger(r.log)); err != nil {
			r.throw(err)
		}
		return goja.Undefined()
	})

	_ = obj.Set("getAttribute", func(call goja.FunctionCall) goja.Value {
		v, ok := n.LookupAttribute(call.Argument(0).String())
		if !ok {
			return goja.Null()
		}
		return r.vm.ToValue(v)
	})
	_ = obj.Set("hasAttribute", func(call goja.FunctionCall) goja.Value {
		return r.vm.ToValue(n.HasAttribute(call.Argument(0).String()))
	})
	_ = obj.Set("hasAttributes", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(n.HasAttributes())
	})
	_ = obj.Set("getAttributeNames", func(goja.FunctionCall) goja.Value {
		names := n.GetAttributeNames()
		items := make([]interface{}, len(names))
		for i, name := range names {
			items[i] = name
		}
		return r.vm.NewArray(items...)
	})
	_ = obj.Set("setAttribute", func(call goja.FunctionCall) goja.Value {
		if err := n.SetAttribute(call.Argument(0).String(), call.Argument(1).String()); err != nil {
			r.throw(err)
		}
		return goja.Undefined()
	})
	_ = obj.Set("removeAttribute", func(call goja.FunctionCall) goja.Value {
		n.RemoveAttribute(call.Argument(0).String())
		return goja.Undefined()
	})

	if n.Kind == spec.ScriptElement {
		r.bindScript(obj, n)
	}
}

func (r *Runtime) bindScript(obj *goja.Object, n *spec.Node) {
	r.getter(obj, "readyState", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(string(n.HTMLScript.ReadyState))
	})
	r.getter(obj, "text", func(goja.FunctionCall) goja.Value {
		code, _ := n.InlineCode()
		return r.vm.ToValue(code)
	})
	for _, name := range []string{spec.SrcAttr, spec.TypeAttr, spec.CharsetAttr, spec.EventAttr} {
		name := name
		r.accessor(obj, name, func(goja.FunctionCall) goja.Value {
			return r.vm.ToValue(n.GetAttribute(name))
		}, func(call goja.FunctionCall) goja.Value {
			if err := n.SetAttribute(name, call.Argument(0).String()); err != nil {
				r.throw(err)
			}
			return goja.Undefined()
		})
	}
	r.accessor(obj, "htmlFor", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(n.GetAttribute(spec.ForAttr))
	}, func(call goja.FunctionCall) goja.Value {
		if err := n.SetAttribute(spec.ForAttr, call.Argument(0).String()); err != nil {
			r.throw(err)
		}
		return goja.Undefined()
	})
	r.accessor(obj, "defer", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(n.IsDeferred())
	}, func(call goja.FunctionCall) goja.Value {
		if call.Argument(0).ToBoolean() {
			if err := n.SetAttribute(spec.DeferAttr, ""); err != nil {
				r.throw(err)
			}
		} else {
			n.RemoveAttribute(spec.DeferAttr)
		}
		return goja.Undefined()
	})
}

func (r *Runtime) bindCharacterData(obj *goja.Object, n *spec.Node) {
	data := func() *spec.CharacterData {
		if n.NodeType == spec.TextNode {
			return n.Text.CharacterData
		}
		return n.Comment.CharacterData
	}
	r.accessor(obj, "data", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(data().Data)
	}, func(call goja.FunctionCall) goja.Value {
		data().ReplaceData(call.Argument(0).String())
		return goja.Undefined()
	})
	r.getter(obj, "nodeValue", func(goja.FunctionCall) goja.Value {
		return r.vm.ToValue(data().Data)
	})
}

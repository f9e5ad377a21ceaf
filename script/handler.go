package script

import (
	"strconv"
	"strings"

	"github.com/heathj/scriptrun/parser/spec"
)

const handlerPrefix = "__scriptrun_event_handler_"

// scriptCode returns the code to run for the inline text of n. With both
// event and for defined, text becomes the body of a uniquely named function
// assigned as that event handler of the for target.
func (c *Context) scriptCode(n *spec.Node, text string) string {
	event, hasEvent := n.LookupAttribute(spec.EventAttr)
	target, hasFor := n.LookupAttribute(spec.ForAttr)
	if !hasEvent || !hasFor {
		return text
	}

	// "onload" and "onload()" are both accepted
	event = strings.TrimSuffix(event, "()")
	name := handlerPrefix + strconv.FormatUint(c.nextHandlerID(), 10)

	var b strings.Builder
	b.WriteString("function " + name + "()\n")
	b.WriteString("{" + text + "}\n")
	b.WriteString(target + "." + event + "=" + name + ";")
	return b.String()
}

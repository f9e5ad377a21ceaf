package script

import (
	"github.com/pkg/errors"

	"github.com/heathj/scriptrun/parser/spec"
)

// SetReadyStateComplete moves n straight to the complete state and calls its
// onreadystatechange handler, if one is registered. Only legacy timing
// tracks script readiness.
func (c *Context) SetReadyStateComplete(n *spec.Node) error {
	if !c.profile.UsesLegacyTiming || n.HTMLScript == nil {
		return nil
	}

	n.HTMLScript.ReadyState = spec.Complete
	if c.engine == nil {
		return nil
	}
	handler := c.engine.ReadyStateChangeHandler(n)
	if handler == nil {
		return nil
	}
	return errors.Wrap(c.engine.Invoke(handler, n, nil, n), "onreadystatechange")
}

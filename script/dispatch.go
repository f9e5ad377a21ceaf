package script

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/heathj/scriptrun/parser/spec"
)

const (
	// NoOpSource is a src value libraries use to mean "nothing to load". It
	// is never resolved.
	NoOpSource = "//:"

	PseudoURLPrefix = "javascript:"
)

// Execute runs the code of n if it is eligible. When honorDeferred is false
// a deferred script is left alone under legacy timing. Engine failures are
// returned; loader failures never are.
func (c *Context) Execute(n *spec.Node, honorDeferred bool) error {
	if !c.IsExecutionNeeded(n) {
		return nil
	}
	if !honorDeferred && n.IsDeferred() && c.profile.UsesLegacyTiming {
		return nil
	}

	src, hasSrc := n.LookupAttribute(spec.SrcAttr)
	if hasSrc && src == NoOpSource {
		return nil
	}

	if err := c.enter(); err != nil {
		return err
	}
	defer c.leave()

	switch {
	case hasSrc && strings.HasPrefix(src, PseudoURLPrefix):
		return c.runPseudoURL(n, src)
	case hasSrc:
		if c.loader == nil {
			c.log.WithField("src", src).Warn("no resource loader, external script skipped")
			return nil
		}
		c.log.WithField("src", src).Debug("loading external script")
		c.loader.Load(n, src, n.GetAttribute(spec.CharsetAttr))
		return nil
	}

	text, ok := n.InlineCode()
	if !ok {
		return nil
	}
	if c.engine == nil {
		return ErrNoEngine
	}
	label := inlineLabel(n)
	if err := c.engine.Run(c.scriptCode(n, text), label, n.StartLine); err != nil {
		return errors.Wrap(err, label)
	}
	return nil
}

// runPseudoURL runs src="javascript:'code'". Anything that is not a quoted
// literal is ignored.
func (c *Context) runPseudoURL(n *spec.Node, src string) error {
	if c.profile.SkipsPseudoURL() {
		return nil
	}
	code, ok := unquote(strings.TrimSpace(strings.TrimPrefix(src, PseudoURLPrefix)))
	if !ok {
		return nil
	}
	if c.engine == nil {
		return ErrNoEngine
	}
	c.log.WithField("code", code).Debug("executing javascript: source")
	if err := c.engine.Run(code, code, n.StartLine); err != nil {
		return errors.Wrap(err, "javascript: source")
	}
	return nil
}

func unquote(s string) (string, bool) {
	if len(s) < 3 {
		return "", false
	}
	first, last := s[0], s[len(s)-1]
	if first != last || (first != '\'' && first != '"') {
		return "", false
	}
	return s[1 : len(s)-1], true
}

func inlineLabel(n *spec.Node) string {
	url := ""
	if doc := documentOf(n); doc != nil {
		url = doc.URL
	}
	return fmt.Sprintf("script in %s from (%d, %d) to (%d, %d)",
		url, n.StartLine, n.StartColumn, n.EndLine, n.EndColumn)
}

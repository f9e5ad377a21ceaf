package script

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heathj/scriptrun/parser/spec"
)

func TestReadyStateModernTiming(t *testing.T) {
	f := newFixture(t, Modern)
	n := f.script(nil, "x()")
	f.engine.handlers[n] = func() error { return nil }
	f.attach(t, n)

	assert.Equal(t, spec.Uninitialized, n.HTMLScript.ReadyState)
	assert.Empty(t, f.engine.invoked)
	assert.Equal(t, []string{"run"}, f.engine.events)
}

func TestReadyStateLegacyTiming(t *testing.T) {
	f := newFixture(t, Legacy6)
	n := f.script(nil, "x()")
	f.engine.handlers[n] = func() error { return nil }
	assert.Equal(t, spec.Uninitialized, n.HTMLScript.ReadyState)

	f.attach(t, n)

	assert.Equal(t, spec.Complete, n.HTMLScript.ReadyState)
	assert.Equal(t, []*spec.Node{n}, f.engine.invoked)
	// the handler sees complete before the code runs
	assert.Equal(t, []string{"invoke", "run"}, f.engine.events)
}

func TestReadyStateWithoutHandler(t *testing.T) {
	f := newFixture(t, Legacy8)
	n := f.script(nil, "")
	require.NoError(t, f.ctx.SetReadyStateComplete(n))

	assert.Equal(t, spec.Complete, n.HTMLScript.ReadyState)
	assert.Empty(t, f.engine.invoked)
}

func TestReadyStateHandlerError(t *testing.T) {
	f := newFixture(t, Legacy8)
	n := f.script(nil, "")
	boom := errors.New("handler threw")
	f.engine.handlers[n] = func() error { return boom }

	err := f.ctx.SetReadyStateComplete(n)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "onreadystatechange")
}

func TestReadyStateIgnoresOtherElements(t *testing.T) {
	f := newFixture(t, Legacy8)
	div := f.doc.Document.CreateElement("div")
	require.NoError(t, f.ctx.SetReadyStateComplete(div))
	assert.Nil(t, div.HTMLScript)
}

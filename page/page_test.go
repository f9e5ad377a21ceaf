package page

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heathj/scriptrun/config"
	"github.com/heathj/scriptrun/parser/spec"
	"github.com/heathj/scriptrun/script"
)

const orderPage = `<html><head>
<script>var order = ['inline'];</script>
<script defer>order.push('deferred');</script>
<script src="lib.js"></script>
</head><body>
<script>order.push('body');</script>
</body></html>`

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/lib.js":
			w.Header().Set("Content-Type", "text/javascript")
			_, _ = w.Write([]byte("order.push('external');"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func load(t *testing.T, markup, url string, cfg config.Config) *Page {
	t.Helper()
	logger, _ := test.NewNullLogger()
	p, err := Load(strings.NewReader(markup), url, cfg, logrus.NewEntry(logger))
	require.NoError(t, err)
	return p
}

func TestLoadOrder(t *testing.T) {
	srv := newServer(t)
	tests := []struct {
		profile script.ExecutionProfile
		want    string
	}{
		{script.Modern, "inline,deferred,external,body"},
		{script.Legacy6, "inline,external,body,deferred"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.profile.Name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			cfg.Profile = tt.profile
			p := load(t, orderPage, srv.URL+"/index.html", cfg)

			require.Empty(t, p.HookErrors)
			require.Empty(t, p.Loader.Failures)
			v, err := p.Engine.VM().RunString("order.join(',')")
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
			assert.True(t, p.Document.Document.LoadFinished())
		})
	}
}

func TestLoadLegacyReadyState(t *testing.T) {
	srv := newServer(t)
	cfg := config.Default()
	cfg.Profile = script.Legacy8
	p := load(t, orderPage, srv.URL+"/index.html", cfg)

	for _, s := range p.Document.GetElementsByTagName("script") {
		assert.Equal(t, spec.Complete, s.HTMLScript.ReadyState)
	}
}

func TestLoadScriptingDisabled(t *testing.T) {
	srv := newServer(t)
	cfg := config.Default()
	cfg.JavaScriptEnabled = false
	p := load(t, orderPage, srv.URL+"/index.html", cfg)

	assert.Nil(t, p.Engine.Get("order"))
	assert.True(t, p.Document.Document.LoadFinished())
}

func TestLoadPseudoURL(t *testing.T) {
	markup := `<body><script src="javascript:'var pseudo = 1'"></script></body>`
	tests := []struct {
		profile script.ExecutionProfile
		ran     bool
	}{
		{script.Modern, true},
		{script.Legacy6, true},
		{script.Legacy7, false},
		{script.Legacy8, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.profile.Name, func(t *testing.T) {
			t.Parallel()
			cfg := config.Default()
			cfg.Profile = tt.profile
			p := load(t, markup, "http://example.com/", cfg)
			assert.Equal(t, tt.ran, p.Engine.Get("pseudo") != nil)
			assert.Empty(t, p.Loader.Failures)
		})
	}
}

func TestLoadCollectsScriptErrors(t *testing.T) {
	p := load(t, `<body><script>throw new Error('first')</script><script>var after = 1;</script></body>`,
		"http://example.com/", config.Default())

	require.Len(t, p.HookErrors, 1)
	assert.Contains(t, p.HookErrors[0].Error(), "first")
	assert.Equal(t, int64(1), p.Engine.Get("after").ToInteger())
}

func TestLoadExecutionDepth(t *testing.T) {
	cfg := config.Default()
	cfg.MaxExecutionDepth = 3
	p := load(t, `<body><script>
var depth = 0;
function spawn() {
	depth++;
	var s = document.createElement('script');
	s.appendChild(document.createTextNode('spawn()'));
	document.body.appendChild(s);
}
spawn();
</script></body>`, "http://example.com/", cfg)

	require.Len(t, p.HookErrors, 1)
	assert.Contains(t, p.HookErrors[0].Error(), script.ErrExecutionDepthExceeded.Error())
	assert.Equal(t, int64(3), p.Engine.Get("depth").ToInteger())
}

func TestLoadNoScriptAndNavigation(t *testing.T) {
	p := load(t, `<body>
<noscript><script>var hidden = 1;</script></noscript>
<iframe><script>var framed = 1;</script></iframe>
<script>var before = 1;</script>
</body>`, "http://example.com/", config.Default())

	assert.Nil(t, p.Engine.Get("hidden"))
	assert.Nil(t, p.Engine.Get("framed"))
	assert.NotNil(t, p.Engine.Get("before"))

	inner := p.Document.Document.CreateElement("script")
	inner.ParserAppendChild(p.Document.Document.CreateTextNode("var moved = 1;"))
	_, err := p.Document.GetElementsByTagName("noscript")[0].AppendChild(inner)
	require.NoError(t, err)
	assert.Nil(t, p.Engine.Get("moved"))

	next := spec.NewHTMLDocumentNode("http://example.com/next")
	p.Window.Navigate(next.Document)
	s := p.Document.Document.CreateElement("script")
	s.ParserAppendChild(p.Document.Document.CreateTextNode("var late = 1;"))
	_, err = p.Document.GetElementsByTagName("body")[0].AppendChild(s)
	require.NoError(t, err)
	assert.Nil(t, p.Engine.Get("late"))
}

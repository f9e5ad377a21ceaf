// Package loader fetches the code of script elements with a src attribute and
// hands it to the engine.
package loader

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/heathj/scriptrun/parser/spec"
	"github.com/heathj/scriptrun/script"
)

// ErrUnsupportedScheme is returned for references that are neither http(s)
// nor file URLs.
var ErrUnsupportedScheme = errors.New("unsupported url scheme")

// ErrStatus is returned for non-2xx responses.
var ErrStatus = errors.New("unexpected http status")

// Runner runs fetched code.
type Runner interface {
	Run(code, label string, reportLine int) error
}

// Loader resolves references against the document URL, fetches them and runs
// the decoded text. It never reports failures to its caller; they are logged.
type Loader struct {
	runner  Runner
	client  *http.Client
	timeout time.Duration
	log     *logrus.Entry

	// Failures collects the errors of every failed load, in order.
	Failures []error
}

func New(runner Runner, client *http.Client, timeout time.Duration, log *logrus.Entry) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Loader{
		runner:  runner,
		client:  client,
		timeout: timeout,
		log:     log.WithField("component", "loader"),
	}
}

// SetRunner replaces the runner.
func (l *Loader) SetRunner(runner Runner) { l.runner = runner }

// Load fetches reference, decodes it with charset (falling back to the
// response's declared charset, then UTF-8) and runs it.
func (l *Loader) Load(n *spec.Node, reference, charset string) {
	log := l.log.WithField("src", reference)
	if err := l.load(n, reference, charset); err != nil {
		l.Failures = append(l.Failures, err)
		log.WithError(err).Error("external script failed")
	}
}

func (l *Loader) load(n *spec.Node, reference, charset string) error {
	u, err := Resolve(baseURL(n), reference)
	if err != nil {
		return err
	}

	body, declared, err := l.fetch(u)
	if err != nil {
		return err
	}
	if charset == "" {
		charset = declared
	}
	code, err := Decode(body, charset)
	if err != nil {
		return err
	}
	if l.runner == nil {
		return errors.New("no runner attached")
	}
	return errors.Wrap(l.runner.Run(code, u.String(), 1), u.String())
}

func baseURL(n *spec.Node) string {
	if n.OwnerDocument == nil || n.OwnerDocument.Document == nil {
		return ""
	}
	return n.OwnerDocument.Document.URL
}

// Resolve parses reference relative to base.
func Resolve(base, reference string) (*url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(reference))
	if err != nil {
		return nil, errors.Wrapf(err, "parse %q", reference)
	}
	if base == "" {
		return ref, nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrapf(err, "parse base %q", base)
	}
	return b.ResolveReference(ref), nil
}

func (l *Loader) fetch(u *url.URL) ([]byte, string, error) {
	switch u.Scheme {
	case "http", "https":
		return l.fetchHTTP(u)
	case "file":
		b, err := os.ReadFile(u.Path)
		return b, "", errors.Wrapf(err, "read %s", u.Path)
	}
	return nil, "", errors.Wrap(ErrUnsupportedScheme, u.String())
}

func (l *Loader) fetchHTTP(u *url.URL) ([]byte, string, error) {
	ctx := context.Background()
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", errors.Wrap(err, "build request")
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, "", errors.Wrapf(err, "get %s", u)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", errors.Wrapf(ErrStatus, "get %s: %d", u, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", errors.Wrapf(err, "read %s", u)
	}
	return b, contentTypeCharset(resp.Header.Get("Content-Type")), nil
}

func contentTypeCharset(contentType string) string {
	for _, part := range strings.Split(contentType, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if ok && strings.EqualFold(k, "charset") {
			return strings.Trim(v, `"`)
		}
	}
	return ""
}

// Decode converts body from charset to UTF-8. An empty or unknown charset is
// read as UTF-8, dropping a leading byte order mark.
func Decode(body []byte, charset string) (string, error) {
	var enc encoding.Encoding = unicode.UTF8BOM
	if charset != "" {
		if e, err := htmlindex.Get(charset); err == nil {
			enc = e
		}
	}
	out, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", errors.Wrapf(err, "decode %s", charset)
	}
	return string(out), nil
}

var _ script.ExternalResourceLoader = (*Loader)(nil)

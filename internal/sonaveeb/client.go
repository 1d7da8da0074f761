package sonaveeb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/kpauljoseph/sonaveeb-anki/pkg/logger"
	"github.com/kpauljoseph/sonaveeb-anki/pkg/models"
)

const (
	DefaultBaseURL  = "https://sonaveeb.ee"
	DefaultTimeout  = 10 * time.Second
	DefaultLanguage = "et"
	SessionCookie   = "ww-sess"

	DefaultMaxBodySize = 8 << 20
)

// Forms is the answer of the form lookup endpoint.
type Forms struct {
	// ExactMatch is the query itself when the service knows it as a base form.
	ExactMatch string
	BaseForms  []string
}

func (f Forms) HasExactMatch() bool {
	return f.ExactMatch != ""
}

// Empty reports whether the query matched nothing at all.
func (f Forms) Empty() bool {
	return f.ExactMatch == "" && len(f.BaseForms) == 0
}

type formsResponse struct {
	PrefWords []string `json:"prefWords"`
	FormWords []string `json:"formWords"`
}

// Client talks to Sõnaveeb over a single cookie session. It is safe for
// concurrent use; the profile can be switched while requests are in flight.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	parser     *Parser
	logger     *logger.Logger
	timeout    time.Duration
	maxBody    int64

	mu      sync.RWMutex
	profile Profile

	sessionMu sync.Mutex
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) {
		if u, err := url.Parse(strings.TrimRight(base, "/")); err == nil {
			c.baseURL = u
		}
	}
}

// WithHTTPClient replaces the transport. The client is copied and given the
// session cookie jar when it has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		if cp.Jar == nil {
			cp.Jar = c.httpClient.Jar
		}
		c.httpClient = &cp
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l.Named("sonaveeb")
		}
	}
}

func WithProfile(p Profile) Option {
	return func(c *Client) {
		c.profile = p
	}
}

// WithTimeout bounds every request made by the client. Zero disables the
// bound and leaves it to the caller's context.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxBodySize caps the size of a response. Larger responses fail with
// ErrBodyTooLarge instead of being parsed partially.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

func NewClient(opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("sonaveeb: create cookie jar: %w", err)
	}
	base, _ := url.Parse(DefaultBaseURL)

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{Jar: jar},
		logger:     logger.Discard(),
		timeout:    DefaultTimeout,
		maxBody:    DefaultMaxBodySize,
		profile:    ProfileLite,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.parser = NewParser(c.baseURL.String())
	return c, nil
}

func (c *Client) Profile() Profile {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.profile
}

// SetProfile switches the URL set used by subsequent requests. The session
// is kept.
func (c *Client) SetProfile(p Profile) {
	c.mu.Lock()
	c.profile = p
	c.mu.Unlock()
	c.logger.Debug("Switched dictionary profile to %s", p)
}

func (c *Client) urls() urlTemplates {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return profileURLs[c.profile]
}

// LookupForms asks the service which base forms word could be an inflection of.
func (c *Client) LookupForms(ctx context.Context, word string) (Forms, error) {
	if err := c.ensureSession(ctx); err != nil {
		return Forms{}, err
	}

	body, err := c.get(ctx, "lookup forms", c.endpoint(c.urls().forms, word))
	if err != nil {
		return Forms{}, err
	}

	var resp formsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Forms{}, fmt.Errorf("sonaveeb: decode forms of %q: %w", word, err)
	}

	forms := Forms{BaseForms: resp.FormWords}
	if forms.BaseForms == nil {
		forms.BaseForms = []string{}
	}
	for _, w := range resp.PrefWords {
		if w == word {
			forms.ExactMatch = word
			break
		}
	}
	c.logger.Debug("Forms of %q: exact=%q base=%v", word, forms.ExactMatch, forms.BaseForms)
	return forms, nil
}

// SearchHomonyms lists the homonyms of a base form, keeping only those tagged
// with lang. An empty lang keeps every language.
func (c *Client) SearchHomonyms(ctx context.Context, baseForm, lang string) ([]models.WordReference, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "search homonyms", c.endpoint(c.urls().search, baseForm))
	if err != nil {
		return nil, err
	}

	refs, err := c.parser.ParseSearchResults(bytes.NewReader(body), lang)
	if err != nil {
		return nil, fmt.Errorf("sonaveeb: %w", err)
	}
	c.logger.Debug("Found %d homonyms for %q", len(refs), baseForm)
	return refs, nil
}

// FetchEntry downloads and parses the article a reference points at. The
// reference's ID and URL are stamped onto the result.
func (c *Client) FetchEntry(ctx context.Context, ref models.WordReference) (*models.WordEntry, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, "fetch entry", c.endpoint(c.urls().details, ref.ID))
	if err != nil {
		return nil, err
	}

	entry, err := c.parser.ParseWordEntry(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("sonaveeb: %w", err)
	}
	entry.ID = ref.ID
	entry.SourceURL = ref.URL

	if entry.Found() {
		if missing := entry.MissingForms(); len(missing) > 0 {
			c.logger.Warn("Entry %q (id %s, %s) lacks essential forms: %s",
				entry.Headword, entry.ID, entry.WordClass, strings.Join(missing, ", "))
		}
	}
	return entry, nil
}

func (c *Client) endpoint(template, arg string) string {
	return c.baseURL.String() + fmt.Sprintf(template, url.PathEscape(arg))
}

func (c *Client) hasSession() bool {
	for _, cookie := range c.httpClient.Jar.Cookies(c.baseURL) {
		if cookie.Name == SessionCookie {
			return true
		}
	}
	return false
}

// ensureSession fetches the service root once to obtain the session cookie.
func (c *Client) ensureSession(ctx context.Context) error {
	if c.httpClient.Jar == nil {
		return nil
	}
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.hasSession() {
		return nil
	}
	c.logger.Debug("Opening session at %s", c.baseURL)
	_, err := c.get(ctx, "open session", c.baseURL.String()+"/")
	return err
}

func (c *Client) get(ctx context.Context, op, rawURL string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &RequestError{Op: op, URL: rawURL, Err: err}
	}

	c.logger.Trace("GET %s", rawURL)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Op: op, URL: rawURL, Err: classify(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestError{Op: op, URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &RequestError{Op: op, URL: rawURL, Err: classify(err)}
	}
	if int64(len(body)) > c.maxBody {
		return nil, &RequestError{Op: op, URL: rawURL, Err: ErrBodyTooLarge}
	}
	return body, nil
}

func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Join(ErrTimeout, err)
	}
	return err
}

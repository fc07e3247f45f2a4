package quickpay

import (
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/samvad-hq/quickpay-go/pkg/httpclient"
)

const (
	// APIURL is the gateway base every request path is appended to.
	APIURL = "https://api.quickpay.net/"
	// APIVersion is sent as Accept-Version on every request.
	APIVersion = "v10"
	// Version of this client, reported in the User-Agent header.
	Version = "1.0.0"

	defaultArgSeparator = "&"
	defaultTimeout      = 30 * time.Second
)

// Client owns the transport handle shared by every request it makes. A Client is not
// safe for concurrent use.
type Client struct {
	Request *Request

	handle       httpclient.Handle
	resty        *resty.Client
	baseURL      string
	argSeparator string
	timeout      time.Duration
	headers      map[string]string
	log          Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHandle makes the client dispatch over a caller-supplied handle. Auth and default
// headers are then the caller's responsibility.
func WithHandle(h httpclient.Handle) Option {
	return func(c *Client) { c.handle = h }
}

// WithRestyClient uses the given resty.Client as transport.
func WithRestyClient(rc *resty.Client) Option {
	return func(c *Client) { c.resty = rc }
}

// WithTimeout sets the timeout of the resty client built by NewClient. It has no effect
// together with WithHandle or WithRestyClient.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithBaseURL overrides APIURL, e.g. to point at a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithArgSeparator sets the separator used between encoded query parameters.
func WithArgSeparator(sep string) Option {
	return func(c *Client) {
		if sep != "" {
			c.argSeparator = sep
		}
	}
}

// WithLogger routes client and transport log output to log.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// NewClient builds a client authenticated with auth, which is either "user:password"
// or a bare API key. An empty auth sends no credentials.
func NewClient(auth string, opts ...Option) *Client {
	c := &Client{
		baseURL:      APIURL,
		argSeparator: defaultArgSeparator,
		timeout:      defaultTimeout,
		headers:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = ensureLogger(c.log)

	if c.handle == nil {
		rc := c.resty
		if rc == nil {
			rc = httpclient.NewRestyHTTPClient(c.timeout)
		}
		rc.SetLogger(restyLogger{log: c.log})
		rc.SetHeader("Accept-Version", APIVersion).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "quickpay-go/"+Version)
		if auth != "" {
			user, pass := splitAuth(auth)
			rc.SetBasicAuth(user, pass)
		}
		for k, v := range c.headers {
			rc.SetHeader(k, v)
		}
		c.handle = httpclient.NewRestyHandle(rc)
	}

	c.Request = newRequest(c)
	return c
}

// BaseURL returns the prefix request paths are appended to.
func (c *Client) BaseURL() string { return c.baseURL }

// Handle returns the transport handle owned by the client.
func (c *Client) Handle() httpclient.Handle { return c.handle }

func splitAuth(auth string) (user, pass string) {
	if i := strings.Index(auth, ":"); i >= 0 {
		return auth[:i], auth[i+1:]
	}
	return "", auth
}

package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const formContentType = "application/x-www-form-urlencoded"

// RestyHandle adapts resty.Client to the Handle interface.
type RestyHandle struct {
	client *resty.Client

	url        string
	method     string
	body       []byte
	headerSink io.Writer
	captureOut bool

	sentHeaders string
	statusCode  int
}

// NewRestyHandle wraps an existing resty.Client. A nil client gets a default one.
func NewRestyHandle(client *resty.Client) *RestyHandle {
	if client == nil {
		client = resty.New()
	}
	return &RestyHandle{client: client, method: http.MethodGet}
}

// NewRestyHTTPClient exposes a configured resty.Client for callers that want to tune it
// before handing it to NewRestyHandle.
func NewRestyHTTPClient(timeout time.Duration) *resty.Client {
	return newRestyBaseClient(timeout)
}

// newRestyBaseClient creates a new resty.Client with the specified timeout.
func newRestyBaseClient(timeout time.Duration) *resty.Client {
	c := resty.New()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return c
}

// Client returns the underlying resty.Client so owners can set auth and default headers.
func (h *RestyHandle) Client() *resty.Client { return h.client }

func (h *RestyHandle) SetURL(url string)                  { h.url = url }
func (h *RestyHandle) SetMethod(method string)            { h.method = method }
func (h *RestyHandle) SetBody(body []byte)                { h.body = body }
func (h *RestyHandle) SetHeaderSink(w io.Writer)          { h.headerSink = w }
func (h *RestyHandle) CaptureRequestHeaders(enabled bool) { h.captureOut = enabled }
func (h *RestyHandle) RequestHeaders() string             { return h.sentHeaders }
func (h *RestyHandle) StatusCode() int                    { return h.statusCode }

// Exec performs the configured exchange.
func (h *RestyHandle) Exec(ctx context.Context) ([]byte, error) {
	h.sentHeaders = ""
	h.statusCode = 0

	if ctx == nil {
		ctx = context.Background()
	}

	req := h.client.R().SetContext(ctx)
	if h.body != nil {
		req.SetHeader("Content-Type", formContentType).SetBody(h.body)
	}

	resp, err := req.Execute(h.method, h.url)
	if err != nil {
		return nil, wrapError(err)
	}

	if h.captureOut {
		if sent := lastRequest(resp); sent != nil {
			h.sentHeaders = formatRequestHead(sent)
		}
	}
	if h.headerSink != nil && resp.RawResponse != nil {
		if err := writeResponseHead(h.headerSink, resp.RawResponse); err != nil {
			return nil, &Error{Code: CodeRecvError, Err: fmt.Errorf("write response headers: %w", err)}
		}
	}

	h.statusCode = resp.StatusCode()
	return resp.Body(), nil
}

// lastRequest returns the request behind the final response, which differs from the
// original one after redirects.
func lastRequest(resp *resty.Response) *http.Request {
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		return resp.RawResponse.Request
	}
	if resp.Request != nil {
		return resp.Request.RawRequest
	}
	return nil
}

// formatRequestHead renders the request line and headers as they went on the wire.
func formatRequestHead(r *http.Request) string {
	var buf bytes.Buffer
	proto := r.Proto
	if proto == "" {
		proto = "HTTP/1.1"
	}
	fmt.Fprintf(&buf, "%s %s %s\r\n", r.Method, r.URL.RequestURI(), proto)

	host := r.Host
	if host == "" {
		host = r.URL.Host
	}
	fmt.Fprintf(&buf, "Host: %s\r\n", host)
	if r.ContentLength > 0 {
		fmt.Fprintf(&buf, "Content-Length: %d\r\n", r.ContentLength)
	}
	_ = r.Header.Write(&buf)
	buf.WriteString("\r\n")
	return buf.String()
}

func writeResponseHead(w io.Writer, r *http.Response) error {
	if _, err := fmt.Fprintf(w, "%s %s\r\n", r.Proto, r.Status); err != nil {
		return err
	}
	if err := r.Header.Write(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\r\n")
	return err
}

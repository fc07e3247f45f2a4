package quickpay

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Request dispatches API calls over the owning Client's transport handle. Every call is a
// single synchronous exchange; nothing from the handle is kept between calls.
type Request struct {
	client   *Client
	openSink func() headerSink
	lastURL  string
}

func newRequest(c *Client) *Request {
	return &Request{client: c, openSink: openPooledSink}
}

// Get performs an API GET request. Query parameters are appended to path.
func (r *Request) Get(ctx context.Context, path string, query Params) (*Response, error) {
	if len(query) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = r.client.argSeparator
		}
		path += sep + query.Encode(r.client.argSeparator)
	}

	target := r.setURL(path)
	return r.execute(ctx, http.MethodGet, target, nil)
}

// Post performs an API POST request with form as URL-encoded body.
func (r *Request) Post(ctx context.Context, path string, form Params) (*Response, error) {
	target := r.setURL(path)
	return r.execute(ctx, http.MethodPost, target, form)
}

// Put performs an API PUT request with form as URL-encoded body.
func (r *Request) Put(ctx context.Context, path string, form Params) (*Response, error) {
	target := r.setURL(path)
	return r.execute(ctx, http.MethodPut, target, form)
}

// Patch performs an API PATCH request with form as URL-encoded body.
func (r *Request) Patch(ctx context.Context, path string, form Params) (*Response, error) {
	target := r.setURL(path)
	return r.execute(ctx, http.MethodPatch, target, form)
}

// Delete performs an API DELETE request with form as URL-encoded body.
func (r *Request) Delete(ctx context.Context, path string, form Params) (*Response, error) {
	target := r.setURL(path)
	return r.execute(ctx, http.MethodDelete, target, form)
}

// Do dispatches by verb name. Unknown verbs are sent as-is with form as body.
func (r *Request) Do(ctx context.Context, verb, path string, params Params) (*Response, error) {
	switch strings.ToUpper(verb) {
	case http.MethodGet:
		return r.Get(ctx, path, params)
	case http.MethodPost:
		return r.Post(ctx, path, params)
	case http.MethodPut:
		return r.Put(ctx, path, params)
	case http.MethodPatch:
		return r.Patch(ctx, path, params)
	case http.MethodDelete:
		return r.Delete(ctx, path, params)
	default:
		target := r.setURL(path)
		return r.execute(ctx, strings.ToUpper(verb), target, params)
	}
}

// setURL points the handle at the base URL joined with path. The path is not validated.
func (r *Request) setURL(path string) string {
	target := r.client.baseURL + strings.Trim(path, "/")
	r.client.handle.SetURL(target)
	r.lastURL = target
	return target
}

// LastURL returns the full URL of the most recent call, query string included. It is set
// before the exchange, so it is available after a transport error too.
func (r *Request) LastURL() string { return r.lastURL }

func (r *Request) execute(ctx context.Context, verb, target string, form Params) (*Response, error) {
	h := r.client.handle
	log := r.client.log

	h.SetMethod(verb)
	var body []byte
	if len(form) > 0 {
		body = []byte(form.Encode(r.client.argSeparator))
	}
	h.SetBody(body)

	sink := r.openSink()
	defer func() {
		h.SetHeaderSink(nil)
		_ = sink.Close()
	}()
	h.SetHeaderSink(sink)
	h.CaptureRequestHeaders(true)

	start := time.Now()
	data, err := h.Exec(ctx)
	if err != nil {
		terr := newTransportError(err)
		log.ErrorObj("quickpay request failed", "quickpay_transport_error", map[string]any{
			"method":     verb,
			"url":        target,
			"code":       terr.Code,
			"error":      terr.Message,
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
		return nil, terr
	}

	sent := h.RequestHeaders()
	received, err := io.ReadAll(sink)
	if err != nil {
		return nil, newTransportError(err)
	}
	status := h.StatusCode()

	log.DebugObj("quickpay request completed", "quickpay_exchange", map[string]any{
		"method":     verb,
		"url":        target,
		"status":     status,
		"elapsed_ms": time.Since(start).Milliseconds(),
	})

	return NewResponse(status, sent, string(received), data), nil
}

type headerSink interface {
	io.ReadWriter
	Close() error
}

var sinkPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// pooledSink is an in-memory header buffer borrowed from sinkPool until Close.
type pooledSink struct {
	buf *bytes.Buffer
}

func openPooledSink() headerSink {
	buf := sinkPool.Get().(*bytes.Buffer)
	buf.Reset()
	return &pooledSink{buf: buf}
}

func (s *pooledSink) Write(p []byte) (int, error) {
	if s.buf == nil {
		return 0, io.ErrClosedPipe
	}
	return s.buf.Write(p)
}

func (s *pooledSink) Read(p []byte) (int, error) {
	if s.buf == nil {
		return 0, io.EOF
	}
	return s.buf.Read(p)
}

func (s *pooledSink) Close() error {
	if s.buf == nil {
		return nil
	}
	s.buf.Reset()
	sinkPool.Put(s.buf)
	s.buf = nil
	return nil
}

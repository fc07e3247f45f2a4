package quickpay

import (
	"bytes"
	"net/http"
	"net/textproto"
	"regexp"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// authorizationLine matches an Authorization header line. The optional second group is the
// auth scheme, present only when the value has more than one token.
var authorizationLine = regexp.MustCompile(`(?mi)^(authorization:[ \t]*)(?:(\S+)[ \t]+)?[^\r\n]+`)

// Raw holds the unparsed outcome of one exchange.
type Raw struct {
	StatusCode      int    `json:"status_code" yaml:"status_code"`
	SentHeaders     string `json:"sent_headers" yaml:"sent_headers"`
	ReceivedHeaders string `json:"received_headers" yaml:"received_headers"`
	Body            []byte `json:"body" yaml:"body"`
}

// Response wraps the raw outcome of an API call. It is immutable.
type Response struct {
	statusCode      int
	sentHeaders     string
	receivedHeaders string
	body            []byte
}

// NewResponse builds a Response from one exchange. The body is copied.
func NewResponse(statusCode int, sentHeaders, receivedHeaders string, body []byte) *Response {
	return &Response{
		statusCode:      statusCode,
		sentHeaders:     sentHeaders,
		receivedHeaders: receivedHeaders,
		body:            bytes.Clone(body),
	}
}

// HTTPStatus returns the status code the gateway answered with.
func (r *Response) HTTPStatus() int { return r.statusCode }

// IsSuccess reports a 2xx status.
func (r *Response) IsSuccess() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// Body returns a copy of the response body.
func (r *Response) Body() []byte { return bytes.Clone(r.body) }

// BodyString returns the body as a string.
func (r *Response) BodyString() string { return string(r.body) }

// AsRaw returns the raw outcome. The Authorization credentials in the sent headers are
// replaced with **** unless keepAuthorization is set.
func (r *Response) AsRaw(keepAuthorization bool) Raw {
	sent := r.sentHeaders
	if !keepAuthorization {
		sent = maskAuthorization(sent)
	}
	return Raw{
		StatusCode:      r.statusCode,
		SentHeaders:     sent,
		ReceivedHeaders: r.receivedHeaders,
		Body:            bytes.Clone(r.body),
	}
}

// maskAuthorization replaces Authorization credentials with ****, keeping the scheme.
func maskAuthorization(headers string) string {
	return authorizationLine.ReplaceAllStringFunc(headers, func(line string) string {
		m := authorizationLine.FindStringSubmatch(line)
		if m[2] != "" {
			return m[1] + m[2] + " ****"
		}
		return m[1] + "****"
	})
}

// AsMap decodes a JSON object body. An empty body yields an empty map.
func (r *Response) AsMap() (map[string]any, error) {
	out := map[string]any{}
	if len(bytes.TrimSpace(r.body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(r.body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AsSlice decodes a JSON array body, as returned by list endpoints.
func (r *Response) AsSlice() ([]any, error) {
	out := []any{}
	if len(bytes.TrimSpace(r.body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(r.body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode unmarshals the JSON body into v. An empty body leaves v untouched.
func (r *Response) Decode(v any) error {
	if len(bytes.TrimSpace(r.body)) == 0 {
		return nil
	}
	return json.Unmarshal(r.body, v)
}

// Get looks up a value in a JSON body using gjson path syntax, e.g. "operations.#.type".
func (r *Response) Get(path string) gjson.Result {
	return gjson.GetBytes(r.body, path)
}

// Header returns a received header value. When the block holds several responses
// (redirects, 100 Continue) the last one is used.
func (r *Response) Header(name string) string {
	return parseHeaderBlock(r.receivedHeaders).Get(name)
}

// SentHeader returns a header value from the sent request block.
func (r *Response) SentHeader(name string) string {
	return parseHeaderBlock(r.sentHeaders).Get(name)
}

// ReceivedHeaders parses the final received header block.
func (r *Response) ReceivedHeaders() http.Header {
	return parseHeaderBlock(r.receivedHeaders)
}

func parseHeaderBlock(block string) http.Header {
	h := http.Header{}
	block = strings.ReplaceAll(block, "\r\n", "\n")

	var last string
	for _, part := range strings.Split(block, "\n\n") {
		if strings.TrimSpace(part) != "" {
			last = part
		}
	}
	if last == "" {
		return h
	}

	lines := strings.Split(last, "\n")
	for i, line := range lines {
		// request or status line
		if i == 0 && !strings.Contains(strings.SplitN(line, " ", 2)[0], ":") {
			continue
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		h.Add(textproto.CanonicalMIMEHeaderKey(name), strings.TrimSpace(value))
	}
	return h
}

package httpclient

import (
	"context"
	"io"
)

// Handle performs one synchronous HTTP exchange at a time. It is configured in place
// (URL, method, body, header capture) before each Exec, so a Handle must not be shared
// between goroutines.
type Handle interface {
	SetURL(url string)
	SetMethod(method string)
	// SetBody sets a URL-encoded form body. A nil body sends none.
	SetBody(body []byte)
	// SetHeaderSink receives the raw response header block on the next Exec. Nil disables it.
	SetHeaderSink(w io.Writer)
	CaptureRequestHeaders(enabled bool)
	// Exec runs the exchange and returns the response body. Transport failures are
	// returned as *Error.
	Exec(ctx context.Context) ([]byte, error)
	// RequestHeaders returns the header block sent by the last successful Exec, if capture was enabled.
	RequestHeaders() string
	StatusCode() int
}

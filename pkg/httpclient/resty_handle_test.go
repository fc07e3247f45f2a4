package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func TestRestyHandleExecCapturesHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != formContentType {
			t.Fatalf("unexpected content type %q", ct)
		}
		raw, _ := io.ReadAll(r.Body)
		if string(raw) != "amount=100" {
			t.Fatalf("unexpected body %q", raw)
		}
		w.Header().Set("X-Trace", "abc")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":1}`))
	}))
	defer srv.Close()

	h := NewRestyHandle(NewRestyHTTPClient(2 * time.Second))
	h.Client().SetHeader("X-Test", "1")

	var sink bytes.Buffer
	h.SetURL(srv.URL + "/payments")
	h.SetMethod(http.MethodPost)
	h.SetBody([]byte("amount=100"))
	h.SetHeaderSink(&sink)
	h.CaptureRequestHeaders(true)

	body, err := h.Exec(context.Background())
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if string(body) != `{"id":1}` {
		t.Fatalf("unexpected body %q", body)
	}
	if h.StatusCode() != http.StatusCreated {
		t.Fatalf("expected 201, got %d", h.StatusCode())
	}

	received := sink.String()
	if !strings.HasPrefix(received, "HTTP/1.1 201 Created\r\n") {
		t.Fatalf("unexpected status line in %q", received)
	}
	if !strings.Contains(received, "X-Trace: abc\r\n") || !strings.HasSuffix(received, "\r\n\r\n") {
		t.Fatalf("unexpected received headers %q", received)
	}

	sent := h.RequestHeaders()
	if !strings.HasPrefix(sent, "POST /payments HTTP/1.1\r\n") {
		t.Fatalf("unexpected request line in %q", sent)
	}
	if !strings.Contains(sent, "X-Test: 1\r\n") || !strings.Contains(sent, "Content-Length: 10\r\n") {
		t.Fatalf("unexpected sent headers %q", sent)
	}
}

func TestRestyHandleSkipsRequestHeadersWhenCaptureDisabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	h := NewRestyHandle(nil)
	h.SetURL(srv.URL)
	h.SetMethod(http.MethodGet)

	if _, err := h.Exec(context.Background()); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if h.RequestHeaders() != "" {
		t.Fatalf("expected no sent headers, got %q", h.RequestHeaders())
	}
	if h.StatusCode() != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", h.StatusCode())
	}
}

func TestRestyHandleCapturesFinalHopAfterRedirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusFound)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("X-Hop", "new")
		_, _ = w.Write([]byte("ok"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := NewRestyHandle(nil)
	var sink bytes.Buffer
	h.SetURL(srv.URL + "/old")
	h.SetMethod(http.MethodGet)
	h.SetHeaderSink(&sink)
	h.CaptureRequestHeaders(true)

	if _, err := h.Exec(context.Background()); err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if sent := h.RequestHeaders(); !strings.HasPrefix(sent, "GET /new HTTP/1.1\r\n") {
		t.Fatalf("expected sent block of the final request, got %q", sent)
	}
	if received := sink.String(); !strings.HasPrefix(received, "HTTP/1.1 200 OK\r\n") || !strings.Contains(received, "X-Hop: new\r\n") {
		t.Fatalf("unexpected received headers %q", received)
	}
}

func TestRestyHandleConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	target := srv.URL
	srv.Close()

	h := NewRestyHandle(nil)
	h.SetURL(target)
	h.SetMethod(http.MethodGet)

	_, err := h.Exec(context.Background())
	var te *Error
	if !errors.As(err, &te) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	if te.Code != CodeCouldntConnect {
		t.Fatalf("expected code %d, got %d (%v)", CodeCouldntConnect, te.Code, err)
	}
	if h.StatusCode() != 0 {
		t.Fatalf("status should be reset on failure, got %d", h.StatusCode())
	}
}

func TestRestyHandleTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := NewRestyHandle(NewRestyHTTPClient(20 * time.Millisecond))
	h.SetURL(srv.URL)
	h.SetMethod(http.MethodGet)

	_, err := h.Exec(context.Background())
	if code := ErrorCode(err); code != CodeOperationTimedout {
		t.Fatalf("expected timeout code, got %d (%v)", code, err)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"canceled", fmt.Errorf("do: %w", context.Canceled), CodeAbortedByCallback},
		{"deadline", context.DeadlineExceeded, CodeOperationTimedout},
		{"dns", &url.Error{Op: "Get", URL: "https://x.invalid", Err: &net.DNSError{Err: "no such host", Name: "x.invalid"}}, CodeCouldntResolveHost},
		{"dial", &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}, CodeCouldntConnect},
		{"scheme", &url.Error{Op: "Get", URL: "ftp://x", Err: errors.New(`unsupported protocol scheme "ftp"`)}, CodeUnsupportedProtocol},
		{"parse", &url.Error{Op: "parse", URL: "::", Err: errors.New("missing protocol scheme")}, CodeURLMalformat},
		{"fallback", errors.New("unexpected EOF"), CodeRecvError},
	}

	for _, tc := range cases {
		if got := ErrorCode(tc.err); got != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, got)
		}
	}
	if ErrorCode(nil) != 0 {
		t.Fatalf("nil error must map to 0")
	}
}

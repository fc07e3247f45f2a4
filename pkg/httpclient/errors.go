package httpclient

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Transport error codes. Codes match libcurl's CURLE_* numbers.
const (
	CodeUnsupportedProtocol = 1
	CodeURLMalformat        = 3
	CodeCouldntResolveHost  = 6
	CodeCouldntConnect      = 7
	CodeOperationTimedout   = 28
	CodeSSLConnectError     = 35
	CodeAbortedByCallback   = 42
	CodeRecvError           = 56
	CodePeerFailedVerify    = 60
)

// Error is a transport-level failure reported by a Handle.
type Error struct {
	Code int
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("transport error %d", e.Code)
	}
	return e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode returns the numeric code for err, or 0 for nil.
func ErrorCode(err error) int {
	if err == nil {
		return 0
	}
	var te *Error
	if errors.As(err, &te) {
		return te.Code
	}
	return classify(err)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	var te *Error
	if errors.As(err, &te) {
		return te
	}
	return &Error{Code: classify(err), Err: err}
}

func classify(err error) int {
	switch {
	case errors.Is(err, context.Canceled):
		return CodeAbortedByCallback
	case errors.Is(err, context.DeadlineExceeded):
		return CodeOperationTimedout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CodeCouldntResolveHost
	}

	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		invalidCert      x509.CertificateInvalidError
		verifyErr        *tls.CertificateVerificationError
	)
	if errors.As(err, &unknownAuthority) || errors.As(err, &hostnameErr) ||
		errors.As(err, &invalidCert) || errors.As(err, &verifyErr) {
		return CodePeerFailedVerify
	}

	var recordErr tls.RecordHeaderError
	if errors.As(err, &recordErr) {
		return CodeSSLConnectError
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return CodeOperationTimedout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return CodeCouldntConnect
	}

	msg := err.Error()
	if strings.Contains(msg, "unsupported protocol scheme") {
		return CodeUnsupportedProtocol
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Op == "parse" {
		return CodeURLMalformat
	}
	var parseErr url.EscapeError
	if errors.As(err, &parseErr) || strings.Contains(msg, "missing protocol scheme") || strings.Contains(msg, "no Host in request URL") {
		return CodeURLMalformat
	}
	if strings.Contains(msg, "tls: ") {
		return CodeSSLConnectError
	}

	return CodeRecvError
}

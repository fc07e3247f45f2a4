package quickpay

import (
	"errors"
	"fmt"

	"github.com/samvad-hq/quickpay-go/pkg/httpclient"
)

// TransportError reports that the exchange itself failed: nothing was received from the
// gateway. HTTP error statuses are never reported this way.
type TransportError struct {
	Message string
	Code    int
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("quickpay transport error %d: %s", e.Code, e.Message)
}

func (e *TransportError) Unwrap() error { return e.Err }

func newTransportError(err error) *TransportError {
	code := httpclient.ErrorCode(err)
	if code == 0 {
		code = httpclient.CodeRecvError
	}
	return &TransportError{Message: err.Error(), Code: code, Err: err}
}

// IsTransportError reports whether err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

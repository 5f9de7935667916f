package httputil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"

	brerrors "github.com/victorsole/brubru/pkg/errors"
)

// TransientNetworkError is a failure worth retrying: timeouts, refused or
// reset connections, DNS failures and truncated responses.
type TransientNetworkError struct {
	URL string
	Err error
}

func (e *TransientNetworkError) Error() string {
	return fmt.Sprintf("transient network error fetching %s: %v", e.URL, e.Err)
}

func (e *TransientNetworkError) Unwrap() error { return e.Err }

// ErrorCode reports [brerrors.ErrCodeTransientNetwork].
func (e *TransientNetworkError) ErrorCode() brerrors.Code { return brerrors.ErrCodeTransientNetwork }

// HTTPStatusError is returned for any non-2xx response. It is never retried.
type HTTPStatusError struct {
	URL        string
	StatusCode int
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("fetching %s: status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// ErrorCode reports [brerrors.ErrCodeHTTPStatus].
func (e *HTTPStatusError) ErrorCode() brerrors.Code { return brerrors.ErrCodeHTTPStatus }

// NotFound reports whether the remote answered 404 or 410.
func (e *HTTPStatusError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
}

// OtherFetchError covers every other fetch failure: malformed URLs, body
// decoding errors, caller cancellation.
type OtherFetchError struct {
	URL string
	Err error
}

func (e *OtherFetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.URL, e.Err)
}

func (e *OtherFetchError) Unwrap() error { return e.Err }

// ErrorCode reports [brerrors.ErrCodeFetch].
func (e *OtherFetchError) ErrorCode() brerrors.Code { return brerrors.ErrCodeFetch }

// IsTransient reports whether err's chain contains a [*TransientNetworkError].
func IsTransient(err error) bool {
	var te *TransientNetworkError
	return errors.As(err, &te)
}

// IsNotFound reports whether err's chain contains a 404/410 [*HTTPStatusError].
func IsNotFound(err error) bool {
	var se *HTTPStatusError
	return errors.As(err, &se) && se.NotFound()
}

// Classify converts a raw transport error into the fetch taxonomy.
// Errors that are already classified are returned unchanged.
func Classify(url string, err error) error {
	if err == nil {
		return nil
	}
	var (
		te *TransientNetworkError
		se *HTTPStatusError
		oe *OtherFetchError
	)
	if errors.As(err, &te) || errors.As(err, &se) || errors.As(err, &oe) {
		return err
	}
	if isTransientCause(err) {
		return &TransientNetworkError{URL: url, Err: err}
	}
	return &OtherFetchError{URL: url, Err: err}
}

func isTransientCause(err error) bool {
	// Caller cancellation is deliberate; retrying would just fail again.
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNABORTED) || errors.Is(err, syscall.EPIPE) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

// CheckStatus returns an [*HTTPStatusError] for any non-2xx status code.
func CheckStatus(url string, code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	return &HTTPStatusError{URL: url, StatusCode: code}
}

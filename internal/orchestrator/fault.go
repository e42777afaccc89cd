package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/containerd/errdefs"
)

// Fault is a container runtime failure. Code is an HTTP-style status derived
// from the runtime error class; Message is the runtime's own message.
type Fault struct {
	Op      string
	Code    int
	Message string
	Err     error
}

func (f *Fault) Error() string {
	return fmt.Sprintf("%s: %s", f.Op, f.Message)
}

func (f *Fault) Unwrap() error {
	return f.Err
}

func newFault(op string, err error) *Fault {
	var f *Fault
	if errors.As(err, &f) {
		return f
	}
	return &Fault{Op: op, Code: faultCode(err), Message: err.Error(), Err: err}
}

func faultCode(err error) int {
	switch {
	case errdefs.IsNotFound(err):
		return http.StatusNotFound
	case errdefs.IsConflict(err), errdefs.IsAlreadyExists(err):
		return http.StatusConflict
	case errdefs.IsInvalidArgument(err):
		return http.StatusBadRequest
	case errdefs.IsUnauthorized(err):
		return http.StatusUnauthorized
	case errdefs.IsPermissionDenied(err):
		return http.StatusForbidden
	case errdefs.IsNotImplemented(err):
		return http.StatusNotImplemented
	case errdefs.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case errdefs.IsDeadlineExceeded(err), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

package api

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a backend failure for the caller's recovery policy.
type Kind int

const (
	// KindNetwork is a transport-level failure; the backend was never reached
	// or the connection broke mid-request.
	KindNetwork Kind = iota
	// KindAuth covers rejected credentials and expired/invalid tokens.
	KindAuth
	// KindValidation covers malformed input, e.g. a duplicate registration.
	KindValidation
	// KindNotFound means the target resource does not exist (or is not ours).
	KindNotFound
	// KindServer is any unexpected backend failure.
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "server"
	}
}

// Error is the single error type surfaced by the client. Detail carries the
// backend's human-readable message when it supplied one, otherwise the
// per-operation fallback.
type Error struct {
	Kind   Kind
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// IsKind reports whether err is (or wraps) an api.Error of the given kind.
func IsKind(err error, k Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == k
}

// Detail returns the human-readable message of an api.Error, or err.Error()
// for anything else.
func Detail(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Detail
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

func kindForStatus(code int) Kind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	default:
		return KindServer
	}
}

// detailBody matches FastAPI's error envelope.
type detailBody struct {
	Detail string `json:"detail"`
}

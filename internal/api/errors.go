package api

import (
	"errors"
	"net/http"
	"strings"
)

// Kind classifies a backend failure into a stable category the rest of the
// client can branch on. The backend reports failures as free-form messages,
// so classification falls back to matching known phrasings. This is a
// compatibility shim for a contract without structured error codes; all
// phrase matching lives here and nowhere else.
type Kind int

const (
	// KindUnknown is any failure that fits no other category.
	KindUnknown Kind = iota
	// KindNetwork is a transport-level failure (no HTTP response).
	KindNetwork
	// KindBadRequest is a rejected request (validation, duplicates, capacity).
	KindBadRequest
	// KindUnauthorized means the access token is missing, expired or invalid.
	KindUnauthorized
	// KindPermission means the caller is authenticated but not allowed.
	KindPermission
	// KindUserNotFound means a user lookup matched no account.
	KindUserNotFound
	// KindNotFound is any other missing resource.
	KindNotFound
	// KindServer is a backend-side failure (5xx).
	KindServer
)

// String returns a short name for the kind, used in logs.
func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindBadRequest:
		return "bad_request"
	case KindUnauthorized:
		return "unauthorized"
	case KindPermission:
		return "permission"
	case KindUserNotFound:
		return "user_not_found"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

// Error is a normalized backend failure.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "request failed with status " + http.StatusText(e.Status)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind == kind
	}
	return false
}

var userNotFoundPhrases = []string{
	"user not found",
	"user does not exist",
	"no user found",
}

var permissionPhrases = []string{
	"permission",
	"forbidden",
	"not allowed",
}

// Classify maps an HTTP status and backend message onto a Kind.
func Classify(status int, message string) Kind {
	msg := strings.ToLower(message)

	for _, phrase := range permissionPhrases {
		if strings.Contains(msg, phrase) {
			return KindPermission
		}
	}

	for _, phrase := range userNotFoundPhrases {
		if strings.Contains(msg, phrase) {
			return KindUserNotFound
		}
	}

	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthorized
	case status == http.StatusForbidden:
		return KindPermission
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= http.StatusInternalServerError:
		return KindServer
	case status >= http.StatusBadRequest:
		return KindBadRequest
	}

	return KindUnknown
}

// promoteUserNotFound widens generic not-found kinds on user lookups.
// Backends phrase a missing account as "does not exist" or a bare
// "not found", both of which classify generically; the lookup call is
// the only place where that reliably means a missing account.
func promoteUserNotFound(err error) error {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := strings.ToLower(apiErr.Message)
	if apiErr.Kind == KindNotFound ||
		strings.Contains(msg, "does not exist") || strings.Contains(msg, "not found") {
		apiErr.Kind = KindUserNotFound
	}
	return err
}

// Package validate checks candidate teammate mobile numbers: a synchronous
// format rule plus a remote account-existence lookup, memoized for an hour.
package validate

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/technovus/client-go/internal/api"
	"github.com/technovus/client-go/internal/session"
)

// User-facing validation messages. An empty message means the mobile is valid.
const (
	MsgBadFormat    = "Enter a valid 10 digit mobile number"
	MsgUserNotFound = "User does not exist, ask them to create account"
	MsgLookupFailed = "Failed to validate mobile number"
)

const mobileLength = 10

// Normalize strips whitespace, dashes and parentheses from a mobile string.
func Normalize(mobile string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '-', '(', ')':
			return -1
		}
		return r
	}, mobile)
}

// ValidFormat reports whether a normalized mobile is exactly ten digits.
func ValidFormat(mobile string) bool {
	if len(mobile) != mobileLength {
		return false
	}
	for _, r := range mobile {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Validator validates candidate teammate mobiles against the backend.
type Validator struct {
	api     *api.Client
	session *session.Store
	cache   *Cache
	logger  *zap.SugaredLogger
}

// New creates a validator sharing the given cache.
func New(apiClient *api.Client, store *session.Store, cache *Cache, logger *zap.SugaredLogger) *Validator {
	return &Validator{
		api:     apiClient,
		session: store,
		cache:   cache,
		logger:  logger,
	}
}

// Cache exposes the underlying memo cache (for edit invalidation and
// pre-verified marks).
func (v *Validator) Cache() *Cache {
	return v.cache
}

// Validate returns "" when the mobile is valid, or a user-facing message.
// The format rule runs first and never touches the network. A fresh cached
// result short-circuits the lookup; definitive outcomes (valid, no account)
// are memoized, transient lookup failures are not.
func (v *Validator) Validate(ctx context.Context, mobile string) string {
	normalized := Normalize(mobile)
	if !ValidFormat(normalized) {
		return MsgBadFormat
	}

	if v.cache.IsVerified(normalized) {
		return ""
	}

	if message, ok := v.cache.Get(normalized); ok {
		return message
	}

	err := v.session.Authenticate(ctx, func(ctx context.Context, token string) error {
		_, lookupErr := v.api.LookupByMobile(ctx, token, normalized)
		return lookupErr
	})

	switch {
	case err == nil:
		v.cache.Put(normalized, "")
		return ""
	case api.IsKind(err, api.KindUserNotFound):
		v.cache.Put(normalized, MsgUserNotFound)
		return MsgUserNotFound
	default:
		v.logger.Warnw("mobile validation failed", "error", err)
		return MsgLookupFailed
	}
}

// Invalidate drops the memoized result for a mobile after it was edited.
func (v *Validator) Invalidate(mobile string) {
	v.cache.Invalidate(Normalize(mobile))
}

// MarkVerified flags a mobile as pre-verified so it bypasses validation.
func (v *Validator) MarkVerified(mobile string) {
	v.cache.MarkVerified(Normalize(mobile))
}

package newsroom

import (
	stderrors "errors"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeAuthTransport    = "AUTH_TRANSPORT_FAILURE"
	TextCodeProfileFetch     = "PROFILE_FETCH_FAILURE"
	TextCodeProfileNotFound  = "PROFILE_NOT_FOUND"
	TextCodeProfileExists    = "PROFILE_ALREADY_EXISTS"
	TextCodeNotSignedIn      = "NOT_SIGNED_IN"
	TextCodeRoleChangeDenied = "ROLE_CHANGE_DENIED"
	TextCodeUnknownRole      = "UNKNOWN_ROLE"
)

// ErrAuthTransport is returned when the identity provider is unreachable or
// reports an error mid-transition. Non-fatal: the session settles to
// signed-out and re-subscription retries.
var ErrAuthTransport = errors.New("identity provider unreachable", errors.CategoryAuth).
	WithTextCode(TextCodeAuthTransport).
	WithCode(errors.CodeUnauthorized)

// ErrProfileFetch is returned when the profile backend read fails. Distinct
// from ErrProfileNotFound and must not be conflated with it by callers.
var ErrProfileFetch = errors.New("profile read failed", errors.CategoryOperation).
	WithTextCode(TextCodeProfileFetch).
	WithCode(errors.CodeInternal)

// ErrProfileNotFound is returned when a principal is authenticated but no
// profile document exists yet, e.g. provisioning is still in progress. This is
// an expected transient state, not a failure.
var ErrProfileNotFound = errors.New("profile not provisioned", errors.CategoryNotFound).
	WithTextCode(TextCodeProfileNotFound).
	WithCode(errors.CodeNotFound)

// ErrProfileExists is returned when provisioning collides with an existing
// profile document for the same principal.
var ErrProfileExists = errors.New("profile already provisioned", errors.CategoryConflict).
	WithTextCode(TextCodeProfileExists).
	WithCode(errors.CodeConflict)

// ErrCapabilityDenied is used by edge guards when a capability check fails.
// The evaluator itself never errors; denial there is a plain boolean.
var ErrCapabilityDenied = errors.New("capability denied", errors.CategoryAuthz).
	WithTextCode("CAPABILITY_DENIED").
	WithCode(errors.CodeForbidden)

// ErrNotSignedIn is returned by operations that require a signed-in principal.
var ErrNotSignedIn = errors.New("no signed-in principal", errors.CategoryAuth).
	WithTextCode(TextCodeNotSignedIn).
	WithCode(errors.CodeUnauthorized)

// ErrRoleChangeDenied is returned when an actor without administer-site tries
// to change a profile's role.
var ErrRoleChangeDenied = errors.New("role change requires administer-site", errors.CategoryAuthz).
	WithTextCode(TextCodeRoleChangeDenied).
	WithCode(errors.CodeForbidden)

// ErrUnknownRole is returned when a payload carries a role outside the
// hierarchy.
var ErrUnknownRole = errors.New("unknown role", errors.CategoryValidation).
	WithTextCode(TextCodeUnknownRole).
	WithCode(errors.CodeBadRequest)

// IsNotFound reports whether err represents a missing profile document rather
// than a transport/backend failure.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return stderrors.Is(err, ErrProfileNotFound)
}

package domain

import (
	"errors"
	"fmt"
)

// ErrKind is used to map domain errors to HTTP status codes consistently.
type ErrKind string

const (
	KindValidation     ErrKind = "validation"     // 400
	KindAuth           ErrKind = "auth"           // 401
	KindToken          ErrKind = "token"          // 400, deliberately ambiguous
	KindNotFound       ErrKind = "not_found"      // 404
	KindConflict       ErrKind = "conflict"       // 409
	KindInfrastructure ErrKind = "infrastructure" // 503
	KindInternal       ErrKind = "internal"       // 500
)

// Error is a structured domain error.
// - Kind: high-level category for HTTP mapping
// - Code: stable machine code
// - Message: safe summary for clients
// - Meta: optional details (field, reason, etc.)
// - Cause: wrapped internal error for logging/diagnostics
type Error struct {
	Kind    ErrKind
	Code    string
	Message string
	Meta    map[string]string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (%s): %s: %v", e.Kind, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind ErrKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Wrap(kind ErrKind, code, msg string, cause error) *Error {
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

func WithMeta(err *Error, meta map[string]string) *Error {
	err.Meta = meta
	return err
}

// Is reports whether err carries the given stable code.
func Is(err error, code string) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// ----------------------
// Validation errors (400)
// ----------------------

func ErrInvalidJSON(cause error) *Error {
	return Wrap(KindValidation, "invalid_json", "invalid JSON body", cause)
}

func ErrMissingField(field string) *Error {
	return WithMeta(New(KindValidation, "missing_field", "missing required field"), map[string]string{
		"field": field,
	})
}

func ErrInvalidField(field, reason string) *Error {
	return WithMeta(New(KindValidation, "invalid_field", "invalid field"), map[string]string{
		"field":  field,
		"reason": reason,
	})
}

// ----------------------
// Auth errors (401)
// ----------------------

// ErrInvalidCredentials is returned for both unknown email and wrong
// password so login failures do not reveal which one it was.
func ErrInvalidCredentials() *Error {
	return New(KindAuth, "invalid_credentials", "invalid email or password")
}

func ErrSessionMissing() *Error {
	return New(KindAuth, "session_missing", "no session token provided")
}

func ErrSessionInvalid() *Error {
	return New(KindAuth, "session_invalid", "invalid session token")
}

func ErrSessionExpired() *Error {
	return New(KindAuth, "session_expired", "session is expired")
}

// ----------------------
// One-time token errors (400)
// ----------------------

// ErrTokenInvalidOrExpired covers wrong, stale and replayed codes alike;
// callers must not be able to tell which case they hit.
func ErrTokenInvalidOrExpired() *Error {
	return New(KindToken, "token_invalid_or_expired", "invalid or expired token")
}

// ----------------------
// Not Found (404)
// ----------------------

func ErrAccountNotFound() *Error {
	return New(KindNotFound, "account_not_found", "account not found")
}

// ----------------------
// Conflict (409)
// ----------------------

func ErrEmailAlreadyExists() *Error {
	return New(KindConflict, "email_already_exists", "email already registered")
}

// ErrVerificationCodeTaken means another pending account holds the same
// verification code. Codes are only six digits, so the store enforces
// uniqueness and signup retries with a fresh code.
func ErrVerificationCodeTaken() *Error {
	return New(KindConflict, "verification_code_taken", "verification code already in use")
}

// ----------------------
// Infrastructure / internal (5xx)
// ----------------------

func ErrStoreUnavailable(cause error) *Error {
	return Wrap(KindInfrastructure, "store_unavailable", "credential store unavailable", cause)
}

func ErrHashFailed(cause error) *Error {
	return Wrap(KindInternal, "hash_failed", "password hashing failed", cause)
}

func ErrTokenSignFailed(cause error) *Error {
	return Wrap(KindInternal, "token_sign_failed", "session signing failed", cause)
}

func ErrRandomFailed(cause error) *Error {
	return Wrap(KindInternal, "random_failed", "random generation failed", cause)
}

func ErrInternal(cause error) *Error {
	return Wrap(KindInternal, "internal_error", "internal error", cause)
}

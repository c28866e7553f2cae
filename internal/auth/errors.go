package auth

import (
	"net/http"

	apperrors "github.com/spec-kit/casting-service/pkg/util"
)

// ErrorKind classifies why a request failed authorization.
type ErrorKind string

const (
	KindMissingHeader    ErrorKind = "authorization_header_missing"
	KindMalformedHeader  ErrorKind = "invalid_header"
	KindInvalidSignature ErrorKind = "invalid_signature"
	KindExpired          ErrorKind = "token_expired"
	KindInvalidClaims    ErrorKind = "invalid_claims"
	KindPermissionDenied ErrorKind = "unauthorized"
)

// Messages surfaced to clients.
const (
	MsgMissingHeader      = "Authorization header is expected."
	MsgNotBearer          = `Authorization header must start with "Bearer".`
	MsgTokenNotFound      = "Token not found."
	MsgNotBearerToken     = "Authorization header must be bearer token."
	MsgMalformed          = "Authorization malformed."
	MsgKeyNotFound        = "Unable to find the appropriate key."
	MsgUnparseable        = "Unable to parse authentication token."
	MsgExpired            = "Token expired."
	MsgIncorrectClaims    = "Incorrect claims. Please, check the audience and issuer."
	MsgMissingPermissions = "Permissions not included in JWT."
	MsgPermissionDenied   = "Permission not found."
)

// AuthError is returned by the verifier and the guard for every rejected request.
type AuthError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func newAuthError(kind ErrorKind, message string, err error) *AuthError {
	return &AuthError{Kind: kind, Message: message, Err: err}
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return string(e.Kind) + ": " + e.Message + ": " + e.Err.Error()
	}
	return string(e.Kind) + ": " + e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Status is the HTTP status the error maps to.
func (e *AuthError) Status() int {
	if e.Kind == KindPermissionDenied {
		return http.StatusForbidden
	}
	return http.StatusUnauthorized
}

// DomainError converts the error into the service-wide error type.
func (e *AuthError) DomainError() error {
	if e.Status() == http.StatusForbidden {
		return apperrors.NewForbidden(string(e.Kind), e.Message, e)
	}
	return apperrors.NewUnauthorized(string(e.Kind), e.Message, e)
}

package oidc

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type errorType string

const (
	InvalidRequest errorType = "invalid_request"
	ServerError    errorType = "server_error"
)

func ErrInvalidRequest() *Error {
	return &Error{
		ErrorType: InvalidRequest,
	}
}

func ErrServerError() *Error {
	return &Error{
		ErrorType: ServerError,
	}
}

// Error is the RFC 6749 error response payload written on failed
// back-channel logout requests.
type Error struct {
	Parent      error     `json:"-"`
	ErrorType   errorType `json:"error"`
	Description string    `json:"error_description,omitempty"`
}

func (e *Error) Error() string {
	message := "ErrorType=" + string(e.ErrorType)
	if e.Description != "" {
		message += " Description=" + e.Description
	}
	if e.Parent != nil {
		message += " Parent=" + e.Parent.Error()
	}
	return message
}

func (e *Error) Unwrap() error {
	return e.Parent
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.ErrorType == t.ErrorType &&
		(e.Description == t.Description || t.Description == "") &&
		(e.Parent == t.Parent || t.Parent == nil)
}

func (e *Error) WithParent(err error) *Error {
	e.Parent = err
	return e
}

func (e *Error) WithDescription(desc string, args ...any) *Error {
	e.Description = fmt.Sprintf(desc, args...)
	return e
}

var (
	ErrParse        = errors.New("parsing of logout token failed")
	ErrAudienceType = errors.New("audience must be a string or a list of strings")

	ErrSignatureMissing        = errors.New("logout token does not contain a signature")
	ErrSignatureMultiple       = errors.New("logout token contains multiple signatures")
	ErrSignatureUnsupportedAlg = errors.New("signature algorithm is not supported")
	ErrSignatureInvalidPayload = errors.New("signature does not match the payload")

	ErrIssuerInvalid            = errors.New("issuer does not match")
	ErrAudience                 = errors.New("audience is not valid, must contain the client_id")
	ErrAlgorithmInvalid         = errors.New("token signed with an unexpected algorithm")
	ErrIatInFuture              = errors.New("issuedAt of token is in the future")
	ErrSubjectAndSessionMissing = errors.New("token must contain a sub claim, a sid claim, or both")
	ErrEventsInvalid            = errors.New("events claim does not contain the back-channel logout event")
	ErrNoncePresent             = errors.New("logout token must not contain a nonce claim")
)

// InvalidClaimsError reports every claim of a Logout Token that failed
// validation together with the observed value, for diagnostic logging.
type InvalidClaimsError struct {
	// Claims maps the offending claim name to the value found in the token.
	Claims map[string]any
}

func (e *InvalidClaimsError) Error() string {
	names := make([]string, 0, len(e.Claims))
	for name := range e.Claims {
		names = append(names, name)
	}
	sort.Strings(names)
	return "logout token contains invalid claims: " + strings.Join(names, ", ")
}

// Invalid reports whether the named claim failed validation.
func (e *InvalidClaimsError) Invalid(claim string) bool {
	_, ok := e.Claims[claim]
	return ok
}

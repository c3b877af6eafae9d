// Package session defines the session registry contract consumed by the
// back-channel logout handler, the matching of logout token claims to
// tracked principals, and a concurrency-safe in-memory registry.
package session

import (
	"context"
	"time"
)

// Principal is an authenticated identity tracked by a session registry.
// Instead of asserting a concrete user type, callers read identity
// claims through the Claim capability; principals that do not carry
// OIDC claims report ok == false and will never match a logout token.
type Principal interface {
	// Claim returns the named identity claim and whether it is present.
	Claim(name string) (value any, ok bool)
}

// ClaimString returns the named claim of a principal as a string, or
// an empty string if the claim is absent or not a string.
func ClaimString(p Principal, name string) string {
	value, ok := p.Claim(name)
	if !ok {
		return ""
	}
	s, _ := value.(string)
	return s
}

// Claims is a map backed Principal, suitable for principals built from
// a decoded ID token claim set.
type Claims map[string]any

func (c Claims) Claim(name string) (any, bool) {
	value, ok := c[name]
	return value, ok
}

// Information describes one tracked session of a principal.
type Information struct {
	// SessionID is the opaque handle the registry expires sessions by.
	SessionID string

	// Principal owning the session.
	Principal Principal

	// LastRequest is the time of the last activity on the session.
	LastRequest time.Time

	// Expired reports whether the session was already set to expire.
	Expired bool
}

// Registry tracks which sessions belong to which authenticated
// principal. Implementations must be safe for concurrent use; the
// logout handler reads principals and expires sessions from whatever
// goroutine serves the request.
type Registry interface {
	// AllPrincipals lists every principal with at least one tracked session.
	AllPrincipals(ctx context.Context) ([]Principal, error)

	// Sessions lists the non-expired sessions of the given principal.
	Sessions(ctx context.Context, principal Principal) ([]*Information, error)

	// Expire marks the session with the given ID as expired.
	// Expiring an unknown or already expired session is a no-op.
	Expire(ctx context.Context, sessionID string) error
}

package session

import (
	"github.com/idpkit/backchannel/pkg/oidc"
)

// Match returns the tracked principals a validated logout token
// addresses.
//
// When the token carries a sid claim, principals are matched on their
// own sid claim by exact string equality and the sub claim is ignored
// even if present. Without a sid, principals are matched on the sub
// claim, which claim validation guarantees to be non-empty in that
// case. An empty result is a valid outcome: the provider may notify
// about sessions this application no longer tracks.
func Match(claims *oidc.LogoutTokenClaims, principals []Principal) []Principal {
	var matched []Principal
	for _, principal := range principals {
		if matches(claims, principal) {
			matched = append(matched, principal)
		}
	}
	return matched
}

func matches(claims *oidc.LogoutTokenClaims, principal Principal) bool {
	if claims.SessionID != "" {
		return ClaimString(principal, oidc.ClaimSessionID) == claims.SessionID
	}
	if claims.Subject != "" {
		return ClaimString(principal, oidc.ClaimSubject) == claims.Subject
	}
	return false
}

// Equal reports whether two principals denote the same authenticated
// session, using the same priority as Match: sid when both carry one,
// sub otherwise. It is the equality the logout event broadcaster
// filters subscriptions by.
func Equal(a, b Principal) bool {
	if a == nil || b == nil {
		return false
	}
	if sid := ClaimString(a, oidc.ClaimSessionID); sid != "" {
		return sid == ClaimString(b, oidc.ClaimSessionID)
	}
	if sub := ClaimString(a, oidc.ClaimSubject); sub != "" {
		return sub == ClaimString(b, oidc.ClaimSubject)
	}
	return false
}

package oidc

import (
	"encoding/json"

	jose "github.com/go-jose/go-jose/v3"
)

// EventBackChannelLogout is the member name that the events claim of a
// Logout Token must contain.
// https://openid.net/specs/openid-connect-backchannel-1_0.html#LogoutToken
const EventBackChannelLogout = "http://schemas.openid.net/event/backchannel-logout"

// Claim names used in Logout Tokens.
const (
	ClaimIssuer    = "iss"
	ClaimSubject   = "sub"
	ClaimAudience  = "aud"
	ClaimIssuedAt  = "iat"
	ClaimJWTID     = "jti"
	ClaimEvents    = "events"
	ClaimSessionID = "sid"
	ClaimNonce     = "nonce"

	// HeaderAlgorithm is the JWS header reported in validation
	// failures when the signing algorithm is not the expected one.
	HeaderAlgorithm = "alg"
)

// LogoutTokenClaims are the claims of a Logout Token as defined in
// https://openid.net/specs/openid-connect-backchannel-1_0.html#LogoutToken
type LogoutTokenClaims struct {
	Issuer    string         `json:"iss,omitempty"`
	Subject   string         `json:"sub,omitempty"`
	Audience  Audience       `json:"aud,omitempty"`
	IssuedAt  Time           `json:"iat,omitempty"`
	JWTID     string         `json:"jti,omitempty"`
	Events    map[string]any `json:"events,omitempty"`
	SessionID string         `json:"sid,omitempty"`

	// Claims holds the complete raw claim set of the token. It allows
	// presence checks on claims that must not appear at all, such as nonce.
	Claims map[string]any `json:"-"`

	// SignatureAlg is set to the alg header of the token during
	// signature verification.
	SignatureAlg jose.SignatureAlgorithm `json:"-"`
}

func (c *LogoutTokenClaims) UnmarshalJSON(data []byte) error {
	type Alias LogoutTokenClaims
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*c = LogoutTokenClaims(a)
	return json.Unmarshal(data, &c.Claims)
}

func (c *LogoutTokenClaims) MarshalJSON() ([]byte, error) {
	type Alias LogoutTokenClaims
	return json.Marshal((*Alias)(c))
}

// NewLogoutTokenClaims builds the claims of a Logout Token for the given
// subject and / or session. The events claim is always set to the
// back-channel logout event.
func NewLogoutTokenClaims(issuer, subject, sessionID string, audience []string, jwtid string) *LogoutTokenClaims {
	return &LogoutTokenClaims{
		Issuer:    issuer,
		Subject:   subject,
		Audience:  audience,
		IssuedAt:  NowTime(),
		JWTID:     jwtid,
		Events:    map[string]any{EventBackChannelLogout: struct{}{}},
		SessionID: sessionID,
	}
}

package rp

import (
	"context"
	"time"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/idpkit/backchannel/pkg/oidc"
)

// LogoutTokenVerifier verifies and decodes Logout Tokens of one client
// registration.
type LogoutTokenVerifier oidc.Verifier

// VerifierOption is the type for providing dynamic options to the
// LogoutTokenVerifier.
type VerifierOption func(*LogoutTokenVerifier)

// WithClockSkew mitigates the risk of iat to be in the future because
// of clock skews between provider and relying party. A zero skew falls
// back to oidc.DefaultClockSkew.
func WithClockSkew(skew time.Duration) VerifierOption {
	return func(v *LogoutTokenVerifier) {
		v.Offset = skew
	}
}

// WithSigningAlgorithm overwrites the signing algorithm expected from
// the registration metadata.
func WithSigningAlgorithm(alg jose.SignatureAlgorithm) VerifierOption {
	return func(v *LogoutTokenVerifier) {
		v.Algorithm = alg
	}
}

// WithNow sets the time source used for the iat freshness check.
func WithNow(now func() time.Time) VerifierOption {
	return func(v *LogoutTokenVerifier) {
		v.Now = now
	}
}

// NewLogoutTokenVerifier returns a verifier for logout tokens of the
// given registration, verifying signatures against the given key set.
func NewLogoutTokenVerifier(registration *ClientRegistration, keySet oidc.KeySet, options ...VerifierOption) *LogoutTokenVerifier {
	v := &LogoutTokenVerifier{
		Issuer:    registration.Issuer,
		ClientID:  registration.ClientID,
		KeySet:    keySet,
		Algorithm: registration.SignatureAlgorithm(),
	}
	for _, option := range options {
		option(v)
	}
	return v
}

// DecodeLogoutToken parses the compact token and verifies its
// signature against the verifier's key set. It does not judge the
// claims; failures returned here indicate a structurally broken or
// wrongly signed token, which callers should surface loudly instead of
// answering like a protocol violation.
func DecodeLogoutToken(ctx context.Context, token string, v *LogoutTokenVerifier) (*oidc.LogoutTokenClaims, error) {
	ctx, span := Tracer.Start(ctx, "DecodeLogoutToken")
	defer span.End()

	claims := new(oidc.LogoutTokenClaims)
	payload, err := oidc.ParseToken(token, claims)
	if err != nil {
		return nil, err
	}
	if err := oidc.CheckSignature(ctx, token, payload, claims, nil, v.KeySet); err != nil {
		return nil, err
	}
	return claims, nil
}

// VerifyLogoutToken implements the full Logout Token verification as
// defined in the Back-Channel Logout specification: signature
// verification followed by claim validation. A claim validation
// failure is reported as *oidc.InvalidClaimsError.
func VerifyLogoutToken(ctx context.Context, token string, v *LogoutTokenVerifier) (*oidc.LogoutTokenClaims, error) {
	ctx, span := Tracer.Start(ctx, "VerifyLogoutToken")
	defer span.End()

	claims, err := DecodeLogoutToken(ctx, token, v)
	if err != nil {
		return nil, err
	}
	if err := oidc.ValidateLogoutTokenClaims(claims, (*oidc.Verifier)(v)); err != nil {
		return nil, err
	}
	return claims, nil
}

package oidc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jose "github.com/go-jose/go-jose/v3"
)

// DefaultClockSkew is the tolerance applied when checking that a token
// was not issued in the future.
const DefaultClockSkew = 60 * time.Second

// Verifier holds the client registration data a Logout Token is
// validated against.
type Verifier struct {
	// Issuer the token must originate from. Compared by exact string
	// equality, no normalization.
	Issuer string

	// ClientID that must be contained in the aud claim.
	ClientID string

	// KeySet used to verify the token signature.
	KeySet KeySet

	// Algorithm the token must be signed with. Taken from the provider
	// metadata id_token_signed_response_alg, RS256 if empty.
	Algorithm jose.SignatureAlgorithm

	// Offset is the accepted clock skew for the iat check. The zero
	// value means DefaultClockSkew; validating with no tolerance at
	// all is not supported.
	Offset time.Duration

	// Now returns the current time during validation, time.Now if nil.
	Now func() time.Time
}

// ExpectedAlgorithm returns the signing algorithm the token must carry.
func (v *Verifier) ExpectedAlgorithm() jose.SignatureAlgorithm {
	if v.Algorithm == "" {
		return jose.RS256
	}
	return v.Algorithm
}

func (v *Verifier) offset() time.Duration {
	if v.Offset == 0 {
		return DefaultClockSkew
	}
	return v.Offset
}

func (v *Verifier) now() time.Time {
	if v.Now == nil {
		return time.Now()
	}
	return v.Now()
}

// ParseToken unmarshals the payload of a compact serialized JWS into
// claims, without any verification. The raw payload is returned so a
// later signature check can assert it is the payload that was signed.
func ParseToken(tokenString string, claims any) ([]byte, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: token contains an invalid number of segments", ErrParse)
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed jwt payload: %v", ErrParse, err)
	}
	err = json.Unmarshal(payload, claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	return payload, nil
}

// CheckSignature verifies the signature of a compact serialized token
// against the given key set and sets the SignatureAlg of claims to the
// alg header of the verified signature.
//
// supportedSigAlgs restricts the accepted algorithms; when empty, any
// algorithm the key set can verify is accepted and the algorithm match
// against the client registration is left to claim validation.
func CheckSignature(ctx context.Context, token string, payload []byte, claims *LogoutTokenClaims, supportedSigAlgs []string, set KeySet) error {
	jws, err := jose.ParseSigned(token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(jws.Signatures) == 0 {
		return ErrSignatureMissing
	}
	if len(jws.Signatures) > 1 {
		return ErrSignatureMultiple
	}
	sig := jws.Signatures[0]
	if len(supportedSigAlgs) > 0 && !contains(supportedSigAlgs, sig.Header.Algorithm) {
		return fmt.Errorf("%w: expected one of %q got %q", ErrSignatureUnsupportedAlg, supportedSigAlgs, sig.Header.Algorithm)
	}

	signedPayload, err := set.VerifySignature(ctx, jws)
	if err != nil {
		return err
	}
	if !bytes.Equal(signedPayload, payload) {
		return ErrSignatureInvalidPayload
	}

	claims.SignatureAlg = jose.SignatureAlgorithm(sig.Header.Algorithm)
	return nil
}

// CheckRequiredClaims verifies that iss, iat and aud are present and
// non-empty. A token missing mandatory structure cannot be evaluated
// further, so validation short-circuits on this check.
func CheckRequiredClaims(c *LogoutTokenClaims) error {
	missing := make(map[string]any)
	if c.Issuer == "" {
		missing[ClaimIssuer] = nil
	}
	if c.IssuedAt.IsZero() {
		missing[ClaimIssuedAt] = nil
	}
	if len(c.Audience) == 0 {
		missing[ClaimAudience] = nil
	}
	if len(missing) > 0 {
		return &InvalidClaimsError{Claims: missing}
	}
	return nil
}

// CheckAlgorithm verifies the alg header of the token against the
// algorithm expected for the client, in the same way it is checked for
// ID Tokens.
func CheckAlgorithm(c *LogoutTokenClaims, expected jose.SignatureAlgorithm) error {
	if c.SignatureAlg != expected {
		return fmt.Errorf("%w: expected %q got %q", ErrAlgorithmInvalid, expected, c.SignatureAlg)
	}
	return nil
}

// CheckIssuer verifies the iss claim against the issuer of the client
// registration, by exact string equality.
func CheckIssuer(c *LogoutTokenClaims, issuer string) error {
	if c.Issuer != issuer {
		return fmt.Errorf("%w: expected %q got %q", ErrIssuerInvalid, issuer, c.Issuer)
	}
	return nil
}

// CheckAudience verifies that the aud claim contains the client_id.
func CheckAudience(c *LogoutTokenClaims, clientID string) error {
	if !contains(c.Audience, clientID) {
		return fmt.Errorf("%w (%s)", ErrAudience, clientID)
	}
	return nil
}

// CheckIssuedAt rejects tokens claiming to be issued in the future
// beyond the given clock skew.
func CheckIssuedAt(c *LogoutTokenClaims, offset time.Duration, now time.Time) error {
	issuedAt := c.IssuedAt.AsTime().Round(time.Second)
	if issuedAt.After(now.Add(offset)) {
		return fmt.Errorf("%w: (iat: %v, now with offset: %v)", ErrIatInFuture, issuedAt, now.Add(offset))
	}
	return nil
}

// CheckSubjectOrSessionID verifies that the token contains a sub claim,
// a sid claim, or both.
func CheckSubjectOrSessionID(c *LogoutTokenClaims) error {
	if c.Subject == "" && c.SessionID == "" {
		return ErrSubjectAndSessionMissing
	}
	return nil
}

// CheckEvents verifies that the events claim is a JSON object
// containing the back-channel logout event member.
func CheckEvents(c *LogoutTokenClaims) error {
	if c.Events == nil {
		return ErrEventsInvalid
	}
	if _, ok := c.Events[EventBackChannelLogout]; !ok {
		return ErrEventsInvalid
	}
	return nil
}

// CheckNonceAbsent verifies that the token does not contain a nonce
// claim. Prohibited for Logout Tokens so they can never be mistaken
// for ID Tokens.
func CheckNonceAbsent(c *LogoutTokenClaims) error {
	if _, ok := c.Claims[ClaimNonce]; ok {
		return ErrNoncePresent
	}
	return nil
}

// ValidateLogoutTokenClaims implements the Logout Token validation of
// https://openid.net/specs/openid-connect-backchannel-1_0.html#Validation
// against the client registration data held by v.
//
// Except for the required-claims pre-check, the checks are all
// evaluated so the returned *InvalidClaimsError lists every offending
// claim with the observed value. The signature itself must have been
// verified before, see CheckSignature.
//
// Replay detection via jti and correlation of sub / sid with previously
// issued ID Tokens are optional per the specification and not performed.
func ValidateLogoutTokenClaims(c *LogoutTokenClaims, v *Verifier) error {
	if err := CheckRequiredClaims(c); err != nil {
		return err
	}

	invalid := make(map[string]any)

	if err := CheckAlgorithm(c, v.ExpectedAlgorithm()); err != nil {
		invalid[HeaderAlgorithm] = string(c.SignatureAlg)
	}
	if err := CheckIssuer(c, v.Issuer); err != nil {
		invalid[ClaimIssuer] = c.Issuer
	}
	if err := CheckAudience(c, v.ClientID); err != nil {
		invalid[ClaimAudience] = []string(c.Audience)
	}
	if err := CheckIssuedAt(c, v.offset(), v.now()); err != nil {
		invalid[ClaimIssuedAt] = c.IssuedAt.AsTime()
	}
	if err := CheckSubjectOrSessionID(c); err != nil {
		invalid[ClaimSubject] = c.Subject
		invalid[ClaimSessionID] = c.SessionID
	}
	if err := CheckEvents(c); err != nil {
		invalid[ClaimEvents] = c.Events
	}
	if err := CheckNonceAbsent(c); err != nil {
		invalid[ClaimNonce] = c.Claims[ClaimNonce]
	}

	if len(invalid) > 0 {
		return &InvalidClaimsError{Claims: invalid}
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

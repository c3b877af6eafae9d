// Package testutil helps setting up required data for testing,
// such as signed logout tokens, claims and key sets.
package testutil

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"time"

	jose "github.com/go-jose/go-jose/v3"

	"github.com/idpkit/backchannel/pkg/oidc"
)

const SignatureAlgorithm = jose.RS256

// KeySet implements oidc.KeySet and additionally can create tokens
// that can be validated by this KeySet.
type KeySet struct {
	Private *rsa.PrivateKey
	Public  *rsa.PublicKey

	Signer jose.Signer
}

func NewKeySet() *KeySet {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		panic(err)
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: SignatureAlgorithm, Key: privateKey}, nil)
	if err != nil {
		panic(err)
	}
	return &KeySet{
		Private: privateKey,
		Public:  &privateKey.PublicKey,
		Signer:  signer,
	}
}

// SignClaims marshals any claims value and returns the compact
// serialized signed token.
func (k *KeySet) SignClaims(claims any) string {
	payload, err := json.Marshal(claims)
	if err != nil {
		panic(err)
	}
	object, err := k.Signer.Sign(payload)
	if err != nil {
		panic(err)
	}
	token, err := object.CompactSerialize()
	if err != nil {
		panic(err)
	}
	return token
}

// NewLogoutToken creates signed logout token claims with the passed
// data and returns the compact token and the claims.
func (k *KeySet) NewLogoutToken(issuer, subject, sessionID string, audience []string, issuedAt time.Time) (string, *oidc.LogoutTokenClaims) {
	claims := oidc.NewLogoutTokenClaims(issuer, subject, sessionID, audience, "9876")
	claims.IssuedAt = oidc.FromTime(issuedAt)
	token := k.SignClaims(claims)

	// set this so that assertion in tests will work
	claims.SignatureAlg = SignatureAlgorithm
	return token, claims
}

// JSONWebKeySet returns the public key as a JWKS document, as it would
// be served on a jwks_uri.
func (k *KeySet) JSONWebKeySet() *jose.JSONWebKeySet {
	return &jose.JSONWebKeySet{
		Keys: []jose.JSONWebKey{
			{Key: k.Public, KeyID: "1", Algorithm: string(SignatureAlgorithm), Use: oidc.KeyUseSignature},
		},
	}
}

// VerifySignature implements oidc.KeySet.
func (k *KeySet) VerifySignature(ctx context.Context, jws *jose.JSONWebSignature) (payload []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return jws.Verify(k.Public)
}

// These variables always result in a valid logout token
// for the same test run.
var (
	ValidIssuer    = "https://issuer.local"
	ValidSubject   = "tim@issuer.local"
	ValidSessionID = "08a5ccea-c5e6-4f96-9379-1d8ae57e4b01"
	ValidAudience  = []string{"unit", "test"}
	ValidClientID  = "unit"
	ValidIssuedAt  = time.Now().Add(-time.Minute)
)

// ValidLogoutToken returns a signed token and the claims that are in
// the token. It uses the Valid* global variables and the token always
// passes verification within the same test run.
func (k *KeySet) ValidLogoutToken() (string, *oidc.LogoutTokenClaims) {
	return k.NewLogoutToken(ValidIssuer, ValidSubject, ValidSessionID, ValidAudience, ValidIssuedAt)
}

package oidc

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"errors"

	jose "github.com/go-jose/go-jose/v3"
)

const KeyUseSignature = "sig"

var (
	ErrKeyMultiple = errors.New("multiple possible keys match")
	ErrKeyNone     = errors.New("no possible keys matches")
)

// KeySet represents a set of JSON Web Keys able to verify the
// signature of a Logout Token, typically fetched from the jwks_uri of
// the provider.
type KeySet interface {
	// VerifySignature verifies the signature with the given keyset and
	// returns the raw payload.
	VerifySignature(ctx context.Context, jws *jose.JSONWebSignature) (payload []byte, err error)
}

// GetKeyIDAndAlg returns the kid and alg header of the first signature
// of the JWS.
func GetKeyIDAndAlg(jws *jose.JSONWebSignature) (keyID, alg string) {
	for _, sig := range jws.Signatures {
		return sig.Header.KeyID, sig.Header.Algorithm
	}
	return "", ""
}

// FindMatchingKey searches the given JSON Web Keys for the requested
// key ID, usage and algorithm. It returns the key immediately on an
// exact kid match, ErrKeyNone when nothing matches and ErrKeyMultiple
// when the match is ambiguous, which is the case when multiple keys
// without key ID qualify.
func FindMatchingKey(keyID, use, expectedAlg string, keys ...jose.JSONWebKey) (key jose.JSONWebKey, err error) {
	var validKeys []jose.JSONWebKey
	for _, k := range keys {
		// ignore keys with a use, not matching the expected one
		if k.Use != "" && k.Use != use {
			continue
		}
		// ignore keys of a wrong type for the signature algorithm
		if !algMatchesKey(k.Key, expectedAlg) {
			continue
		}
		if keyID == "" || k.KeyID == "" {
			validKeys = append(validKeys, k)
			continue
		}
		if k.KeyID == keyID {
			return k, nil
		}
	}
	switch len(validKeys) {
	case 0:
		return key, ErrKeyNone
	case 1:
		return validKeys[0], nil
	default:
		return key, ErrKeyMultiple
	}
}

func algMatchesKey(key any, alg string) bool {
	if alg == "" {
		return true
	}
	switch key.(type) {
	case *rsa.PublicKey:
		return alg[0] == 'R' || alg[0] == 'P'
	case *ecdsa.PublicKey:
		return alg[0] == 'E'
	case ed25519.PublicKey:
		return alg == string(jose.EdDSA)
	}
	return false
}

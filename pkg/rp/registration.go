// Package rp implements the relying-party side of OpenID Connect
// Back-Channel Logout 1.0: decoding and validating Logout Tokens sent
// by the provider and terminating the local sessions they address.
// https://openid.net/specs/openid-connect-backchannel-1_0.html
package rp

import (
	"context"
	"errors"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/idpkit/backchannel/internal/otel"
)

var Tracer = otel.Tracer("github.com/idpkit/backchannel/pkg/rp")

// ErrRegistrationNotFound is returned by a ClientRegistry when no
// client is registered under the requested registration ID. An unknown
// registration is a valid lookup outcome and answered with 400 by the
// logout handler.
var ErrRegistrationNotFound = errors.New("client registration not found")

// ClientRegistration is the immutable metadata of one client
// registration with an OpenID Provider.
type ClientRegistration struct {
	// RegistrationID is the local key the registration is looked up by.
	RegistrationID string

	// ClientID registered at the issuer, must be contained in the aud
	// claim of logout tokens.
	ClientID string

	// Issuer URI of the provider.
	Issuer string

	// JWKSURL is the jwks_uri of the provider, used by the default
	// verifier factory to verify token signatures.
	JWKSURL string

	// Algorithm is the id_token_signed_response_alg of the provider
	// metadata. Empty means RS256.
	Algorithm jose.SignatureAlgorithm
}

// SignatureAlgorithm returns the signing algorithm logout tokens of
// this registration must carry, defaulting to RS256.
func (r *ClientRegistration) SignatureAlgorithm() jose.SignatureAlgorithm {
	if r.Algorithm == "" {
		return jose.RS256
	}
	return r.Algorithm
}

// ClientRegistry resolves registration IDs to client registrations.
// Implementations must be safe for concurrent use.
type ClientRegistry interface {
	// FindByRegistrationID returns the registration with the given ID,
	// or ErrRegistrationNotFound.
	FindByRegistrationID(ctx context.Context, registrationID string) (*ClientRegistration, error)
}

// StaticClientRegistry is a ClientRegistry over a fixed set of
// registrations, keyed by registration ID.
type StaticClientRegistry map[string]*ClientRegistration

// NewStaticClientRegistry builds a StaticClientRegistry from the given
// registrations.
func NewStaticClientRegistry(registrations ...*ClientRegistration) StaticClientRegistry {
	registry := make(StaticClientRegistry, len(registrations))
	for _, registration := range registrations {
		registry[registration.RegistrationID] = registration
	}
	return registry
}

// FindByRegistrationID implements ClientRegistry.
func (r StaticClientRegistry) FindByRegistrationID(ctx context.Context, registrationID string) (*ClientRegistration, error) {
	registration, ok := r[registrationID]
	if !ok {
		return nil, ErrRegistrationNotFound
	}
	return registration, nil
}

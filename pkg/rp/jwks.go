package rp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"

	jose "github.com/go-jose/go-jose/v3"

	httphelper "github.com/idpkit/backchannel/pkg/http"
	"github.com/idpkit/backchannel/pkg/oidc"
)

// NewRemoteKeySet returns an oidc.KeySet verifying signatures with the
// JSON Web Keys served on the provider's jwks_uri. Keys are cached and
// refreshed when a token references a key ID that is not cached yet,
// so provider key rotation is picked up without restarts.
func NewRemoteKeySet(client *http.Client, jwksURL string) oidc.KeySet {
	if client == nil {
		client = httphelper.DefaultHTTPClient
	}
	return &remoteKeySet{httpClient: client, jwksURL: jwksURL}
}

type remoteKeySet struct {
	jwksURL    string
	httpClient *http.Client

	// mu guards cachedKeys
	mu         sync.Mutex
	cachedKeys []jose.JSONWebKey
}

func (r *remoteKeySet) VerifySignature(ctx context.Context, jws *jose.JSONWebSignature) ([]byte, error) {
	ctx, span := Tracer.Start(ctx, "VerifySignature")
	defer span.End()

	keyID, alg := oidc.GetKeyIDAndAlg(jws)

	payload, err := r.verifyCached(jws, keyID, alg)
	if err == nil {
		return payload, nil
	}

	keys, err := r.updateKeys(ctx)
	if err != nil {
		return nil, err
	}
	key, err := oidc.FindMatchingKey(keyID, oidc.KeyUseSignature, alg, keys...)
	if err != nil {
		return nil, fmt.Errorf("invalid signature: %w", err)
	}
	return jws.Verify(&key)
}

// verifyCached tries the cached keys and reports an error when no
// cached key verifies the signature, so fresh keys get fetched.
func (r *remoteKeySet) verifyCached(jws *jose.JSONWebSignature, keyID, alg string) ([]byte, error) {
	r.mu.Lock()
	keys := r.cachedKeys
	r.mu.Unlock()

	if len(keys) == 0 {
		return nil, oidc.ErrKeyNone
	}
	key, err := oidc.FindMatchingKey(keyID, oidc.KeyUseSignature, alg, keys...)
	if err != nil {
		return nil, err
	}
	return jws.Verify(&key)
}

func (r *remoteKeySet) updateKeys(ctx context.Context) ([]jose.JSONWebKey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.jwksURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create jwks request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read jwks response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch jwks: %s: %s", resp.Status, body)
	}
	var keySet jose.JSONWebKeySet
	if err := json.Unmarshal(body, &keySet); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}
	if len(keySet.Keys) == 0 {
		return nil, errors.New("jwks document contains no keys")
	}

	r.mu.Lock()
	r.cachedKeys = keySet.Keys
	r.mu.Unlock()
	return keySet.Keys, nil
}

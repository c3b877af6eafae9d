// Package http holds small helpers shared by the HTTP-facing parts of
// the module.
package http

import (
	"net/http"
	"time"
)

// DefaultHTTPClient is used for calls to the provider, e.g. fetching
// the JWKS document.
var DefaultHTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// Decoder populates a struct from decoded form values.
type Decoder interface {
	Decode(dst any, src map[string][]string) error
}

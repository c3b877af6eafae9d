package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/idpkit/backchannel/pkg/oidc"
)

func TestMatch(t *testing.T) {
	john := Claims{"sub": "john", "sid": "S1"}
	johnOtherDevice := Claims{"sub": "john", "sid": "S2"}
	jane := Claims{"sub": "jane", "sid": "S3"}
	anonymous := Claims{}

	principals := []Principal{john, johnOtherDevice, jane, anonymous}

	tests := []struct {
		name   string
		claims *oidc.LogoutTokenClaims
		want   []Principal
	}{
		{
			name:   "sid match selects one session only",
			claims: &oidc.LogoutTokenClaims{Subject: "john", SessionID: "S1"},
			want:   []Principal{john},
		},
		{
			name:   "sid has priority over sub",
			claims: &oidc.LogoutTokenClaims{Subject: "jane", SessionID: "S1"},
			want:   []Principal{john},
		},
		{
			name:   "sub fallback matches all principals of the user",
			claims: &oidc.LogoutTokenClaims{Subject: "john"},
			want:   []Principal{john, johnOtherDevice},
		},
		{
			name:   "unknown sid matches nothing",
			claims: &oidc.LogoutTokenClaims{SessionID: "gone"},
			want:   nil,
		},
		{
			name:   "unknown sub matches nothing",
			claims: &oidc.LogoutTokenClaims{Subject: "stranger"},
			want:   nil,
		},
		{
			name:   "empty claims match nothing",
			claims: &oidc.LogoutTokenClaims{},
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Match(tt.claims, principals)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Principal
		want bool
	}{
		{
			name: "same sid",
			a:    Claims{"sub": "john", "sid": "S1"},
			b:    Claims{"sub": "john", "sid": "S1"},
			want: true,
		},
		{
			name: "different sid, same sub",
			a:    Claims{"sub": "john", "sid": "S1"},
			b:    Claims{"sub": "john", "sid": "S2"},
			want: false,
		},
		{
			name: "no sid, same sub",
			a:    Claims{"sub": "john"},
			b:    Claims{"sub": "john"},
			want: true,
		},
		{
			name: "no sid, different sub",
			a:    Claims{"sub": "john"},
			b:    Claims{"sub": "jane"},
			want: false,
		},
		{
			name: "no claims at all",
			a:    Claims{},
			b:    Claims{},
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestClaimString(t *testing.T) {
	p := Claims{"sub": "john", "groups": []string{"admin"}}
	assert.Equal(t, "john", ClaimString(p, "sub"))
	assert.Empty(t, ClaimString(p, "missing"))
	assert.Empty(t, ClaimString(p, "groups"))
}

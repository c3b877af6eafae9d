package oidc_test

import (
	"context"
	"testing"
	"time"

	jose "github.com/go-jose/go-jose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idpkit/backchannel/internal/testutil"
	. "github.com/idpkit/backchannel/pkg/oidc"
)

var testNow = time.Date(2023, 4, 17, 15, 0, 0, 0, time.UTC)

func newTestVerifier(keySet KeySet) *Verifier {
	return &Verifier{
		Issuer:   "https://issuer.local",
		ClientID: "client-1",
		KeySet:   keySet,
		Offset:   time.Minute,
		Now:      func() time.Time { return testNow },
	}
}

func validClaims() *LogoutTokenClaims {
	claims := NewLogoutTokenClaims("https://issuer.local", "john", "S1", []string{"client-1"}, "jti-1")
	claims.IssuedAt = FromTime(testNow)
	claims.SignatureAlg = jose.RS256
	return claims
}

func TestParseToken(t *testing.T) {
	keySet := testutil.NewKeySet()
	token, want := keySet.ValidLogoutToken()

	got := new(LogoutTokenClaims)
	payload, err := ParseToken(token, got)
	require.NoError(t, err)
	require.NotEmpty(t, payload)
	assert.Equal(t, want.Issuer, got.Issuer)
	assert.Equal(t, want.Subject, got.Subject)
	assert.Equal(t, want.SessionID, got.SessionID)
	assert.Equal(t, Audience(testutil.ValidAudience), got.Audience)
	assert.Contains(t, got.Events, EventBackChannelLogout)
	assert.Contains(t, got.Claims, ClaimIssuer)

	_, err = ParseToken("not.a", got)
	assert.ErrorIs(t, err, ErrParse)

	_, err = ParseToken("$$$.$$$.$$$", got)
	assert.ErrorIs(t, err, ErrParse)
}

func TestCheckSignature(t *testing.T) {
	keySet := testutil.NewKeySet()
	otherKeySet := testutil.NewKeySet()
	token, _ := keySet.ValidLogoutToken()

	tests := []struct {
		name    string
		token   string
		algs    []string
		set     KeySet
		wantErr error
	}{
		{
			name:  "ok",
			token: token,
			set:   keySet,
		},
		{
			name:  "restricted algs, ok",
			token: token,
			algs:  []string{"RS256"},
			set:   keySet,
		},
		{
			name:    "unsupported alg",
			token:   token,
			algs:    []string{"ES256"},
			set:     keySet,
			wantErr: ErrSignatureUnsupportedAlg,
		},
		{
			name:    "malformed",
			token:   "foo",
			set:     keySet,
			wantErr: ErrParse,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := new(LogoutTokenClaims)
			payload, err := ParseToken(token, claims)
			require.NoError(t, err)

			err = CheckSignature(context.Background(), tt.token, payload, claims, tt.algs, tt.set)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testutil.SignatureAlgorithm, claims.SignatureAlg)
		})
	}

	t.Run("wrong key", func(t *testing.T) {
		claims := new(LogoutTokenClaims)
		payload, err := ParseToken(token, claims)
		require.NoError(t, err)
		err = CheckSignature(context.Background(), token, payload, claims, nil, otherKeySet)
		assert.Error(t, err)
	})
}

func TestCheckRequiredClaims(t *testing.T) {
	tests := []struct {
		name        string
		claims      *LogoutTokenClaims
		wantInvalid []string
	}{
		{
			name:   "ok",
			claims: validClaims(),
		},
		{
			name:        "all missing",
			claims:      &LogoutTokenClaims{},
			wantInvalid: []string{ClaimIssuer, ClaimIssuedAt, ClaimAudience},
		},
		{
			name: "iss missing",
			claims: &LogoutTokenClaims{
				IssuedAt: NowTime(),
				Audience: Audience{"client-1"},
			},
			wantInvalid: []string{ClaimIssuer},
		},
		{
			name: "iat missing",
			claims: &LogoutTokenClaims{
				Issuer:   "https://issuer.local",
				Audience: Audience{"client-1"},
			},
			wantInvalid: []string{ClaimIssuedAt},
		},
		{
			name: "aud missing",
			claims: &LogoutTokenClaims{
				Issuer:   "https://issuer.local",
				IssuedAt: NowTime(),
			},
			wantInvalid: []string{ClaimAudience},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckRequiredClaims(tt.claims)
			if len(tt.wantInvalid) == 0 {
				require.NoError(t, err)
				return
			}
			invalidErr := new(InvalidClaimsError)
			require.ErrorAs(t, err, &invalidErr)
			assert.Len(t, invalidErr.Claims, len(tt.wantInvalid))
			for _, claim := range tt.wantInvalid {
				assert.True(t, invalidErr.Invalid(claim), "expected claim %s to be reported", claim)
			}
		})
	}
}

func TestCheckAlgorithm(t *testing.T) {
	claims := validClaims()
	require.NoError(t, CheckAlgorithm(claims, jose.RS256))
	assert.ErrorIs(t, CheckAlgorithm(claims, jose.ES256), ErrAlgorithmInvalid)
}

func TestCheckIssuer(t *testing.T) {
	claims := validClaims()
	require.NoError(t, CheckIssuer(claims, "https://issuer.local"))
	assert.ErrorIs(t, CheckIssuer(claims, "https://other.local"), ErrIssuerInvalid)
}

func TestCheckAudience(t *testing.T) {
	claims := validClaims()
	require.NoError(t, CheckAudience(claims, "client-1"))
	assert.ErrorIs(t, CheckAudience(claims, "client-2"), ErrAudience)
}

func TestCheckIssuedAt(t *testing.T) {
	tests := []struct {
		name     string
		issuedAt time.Time
		wantErr  error
	}{
		{
			name:     "in the past",
			issuedAt: testNow.Add(-time.Hour),
		},
		{
			name:     "now",
			issuedAt: testNow,
		},
		{
			name:     "future within skew",
			issuedAt: testNow.Add(30 * time.Second),
		},
		{
			name:     "future beyond skew",
			issuedAt: testNow.Add(2 * time.Minute),
			wantErr:  ErrIatInFuture,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := validClaims()
			claims.IssuedAt = FromTime(tt.issuedAt)
			err := CheckIssuedAt(claims, time.Minute, testNow)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestCheckSubjectOrSessionID(t *testing.T) {
	claims := validClaims()
	require.NoError(t, CheckSubjectOrSessionID(claims))

	claims.SessionID = ""
	require.NoError(t, CheckSubjectOrSessionID(claims))

	claims.Subject = ""
	assert.ErrorIs(t, CheckSubjectOrSessionID(claims), ErrSubjectAndSessionMissing)

	claims.SessionID = "S1"
	require.NoError(t, CheckSubjectOrSessionID(claims))
}

func TestCheckEvents(t *testing.T) {
	claims := validClaims()
	require.NoError(t, CheckEvents(claims))

	claims.Events = map[string]any{"urn:example:other": struct{}{}}
	assert.ErrorIs(t, CheckEvents(claims), ErrEventsInvalid)

	claims.Events = nil
	assert.ErrorIs(t, CheckEvents(claims), ErrEventsInvalid)
}

func TestCheckNonceAbsent(t *testing.T) {
	claims := validClaims()
	require.NoError(t, CheckNonceAbsent(claims))

	claims.Claims = map[string]any{ClaimNonce: "12345"}
	assert.ErrorIs(t, CheckNonceAbsent(claims), ErrNoncePresent)
}

func TestValidateLogoutTokenClaims(t *testing.T) {
	tests := []struct {
		name        string
		claims      func() *LogoutTokenClaims
		wantInvalid []string
	}{
		{
			name:   "ok",
			claims: validClaims,
		},
		{
			name: "sid only",
			claims: func() *LogoutTokenClaims {
				c := validClaims()
				c.Subject = ""
				return c
			},
		},
		{
			name: "missing required claims short-circuits",
			claims: func() *LogoutTokenClaims {
				c := validClaims()
				c.Issuer = ""
				c.Events = nil // must not be reported
				return c
			},
			wantInvalid: []string{ClaimIssuer},
		},
		{
			name: "wrong algorithm",
			claims: func() *LogoutTokenClaims {
				c := validClaims()
				c.SignatureAlg = jose.HS256
				return c
			},
			wantInvalid: []string{HeaderAlgorithm},
		},
		{
			name: "wrong issuer",
			claims: func() *LogoutTokenClaims {
				c := validClaims()
				c.Issuer = "https://attacker.local"
				return c
			},
			wantInvalid: []string{ClaimIssuer},
		},
		{
			name: "audience without client_id",
			claims: func() *LogoutTokenClaims {
				c := validClaims()
				c.Audience = Audience{"someone-else"}
				return c
			},
			wantInvalid: []string{ClaimAudience},
		},
		{
			name: "issued in the future",
			claims: func() *LogoutTokenClaims {
				c := validClaims()
				c.IssuedAt = FromTime(testNow.Add(time.Hour))
				return c
			},
			wantInvalid: []string{ClaimIssuedAt},
		},
		{
			name: "neither sub nor sid",
			claims: func() *LogoutTokenClaims {
				c := validClaims()
				c.Subject = ""
				c.SessionID = ""
				return c
			},
			wantInvalid: []string{ClaimSubject, ClaimSessionID},
		},
		{
			name: "events without logout member",
			claims: func() *LogoutTokenClaims {
				c := validClaims()
				c.Events = map[string]any{"urn:example:other": struct{}{}}
				return c
			},
			wantInvalid: []string{ClaimEvents},
		},
		{
			name: "nonce present",
			claims: func() *LogoutTokenClaims {
				c := validClaims()
				c.Claims = map[string]any{ClaimNonce: "12345"}
				return c
			},
			wantInvalid: []string{ClaimNonce},
		},
		{
			name: "multiple failures accumulate",
			claims: func() *LogoutTokenClaims {
				c := validClaims()
				c.Issuer = "https://attacker.local"
				c.Audience = Audience{"someone-else"}
				c.Events = nil
				return c
			},
			wantInvalid: []string{ClaimIssuer, ClaimAudience, ClaimEvents},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newTestVerifier(nil)
			err := ValidateLogoutTokenClaims(tt.claims(), v)
			if len(tt.wantInvalid) == 0 {
				require.NoError(t, err)
				return
			}
			invalidErr := new(InvalidClaimsError)
			require.ErrorAs(t, err, &invalidErr)
			assert.Len(t, invalidErr.Claims, len(tt.wantInvalid))
			for _, claim := range tt.wantInvalid {
				assert.True(t, invalidErr.Invalid(claim), "expected claim %s to be reported", claim)
			}
		})
	}
}

func TestValidateLogoutTokenClaims_observedValues(t *testing.T) {
	v := newTestVerifier(nil)
	claims := validClaims()
	claims.SignatureAlg = jose.HS256
	claims.Issuer = "https://attacker.local"

	err := ValidateLogoutTokenClaims(claims, v)
	invalidErr := new(InvalidClaimsError)
	require.ErrorAs(t, err, &invalidErr)
	assert.Equal(t, "HS256", invalidErr.Claims[HeaderAlgorithm])
	assert.Equal(t, "https://attacker.local", invalidErr.Claims[ClaimIssuer])
}

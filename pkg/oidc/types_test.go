package oidc

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAudience_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    Audience
		wantErr bool
	}{
		{
			name: "single string",
			json: `"client-1"`,
			want: Audience{"client-1"},
		},
		{
			name: "array",
			json: `["client-1", "client-2"]`,
			want: Audience{"client-1", "client-2"},
		},
		{
			name:    "invalid entry",
			json:    `[1, 2]`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Audience
			err := json.Unmarshal([]byte(tt.json), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTime_roundTrip(t *testing.T) {
	want := FromTime(time.Date(2023, 4, 17, 15, 0, 0, 0, time.UTC))

	data, err := json.Marshal(want)
	require.NoError(t, err)

	var got Time
	require.NoError(t, json.Unmarshal(data, &got))
	assert.True(t, want.AsTime().Equal(got.AsTime()))
	assert.False(t, got.IsZero())

	var zero Time
	assert.True(t, zero.IsZero())
}

func TestLogoutTokenClaims_UnmarshalJSON(t *testing.T) {
	const doc = `{
		"iss": "https://issuer.local",
		"sub": "john",
		"aud": "client-1",
		"iat": 1681743600,
		"jti": "jti-1",
		"events": {"http://schemas.openid.net/event/backchannel-logout": {}},
		"sid": "S1",
		"nonce": "12345"
	}`

	claims := new(LogoutTokenClaims)
	require.NoError(t, json.Unmarshal([]byte(doc), claims))

	assert.Equal(t, "https://issuer.local", claims.Issuer)
	assert.Equal(t, "john", claims.Subject)
	assert.Equal(t, Audience{"client-1"}, claims.Audience)
	assert.Equal(t, time.Unix(1681743600, 0).UTC(), claims.IssuedAt.AsTime())
	assert.Equal(t, "S1", claims.SessionID)
	assert.Contains(t, claims.Events, EventBackChannelLogout)

	// the raw claim set keeps claims the struct does not model
	assert.Contains(t, claims.Claims, ClaimNonce)
}

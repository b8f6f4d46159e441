package jwt

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func newTestCodec(t *testing.T, secret string, clock *fakeClock) *Codec {
	t.Helper()
	codec, err := NewCodec([]byte(secret), 15*time.Minute, WithClock(clock.Now))
	require.NoError(t, err)
	return codec
}

func TestNewCodec(t *testing.T) {
	_, err := NewCodec(nil, time.Minute)
	require.Error(t, err)

	_, err = NewCodec([]byte("secret"), 0)
	require.Error(t, err)

	codec, err := NewCodec([]byte("secret"), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, codec.AccessTTL())
}

func TestNewCodec_CopiesSecret(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	secret := []byte("mutable-secret")
	codec, err := NewCodec(secret, time.Minute, WithClock(clock.Now))
	require.NoError(t, err)

	token, err := codec.SignRefresh("n1")
	require.NoError(t, err)

	secret[0] = 'X'

	_, err = codec.VerifyRefresh(token)
	assert.NoError(t, err, "изменение исходного среза не должно влиять на codec")
}

func TestAccessRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, "secret", clock)

	token, err := codec.SignAccess("u1", "nonce-1")
	require.NoError(t, err)

	claims, err := codec.VerifyAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.PrincipalID())
	assert.Equal(t, "nonce-1", claims.Nonce)
	assert.True(t, clock.now.Add(15*time.Minute).Equal(claims.ExpiresAt.Time))
}

func TestRefreshRoundTrip(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, "secret", clock)

	token, err := codec.SignRefresh("nonce-1")
	require.NoError(t, err)

	// Refresh токен не имеет срока действия
	clock.now = clock.now.Add(100 * 365 * 24 * time.Hour)

	claims, err := codec.VerifyRefresh(token)
	require.NoError(t, err)
	assert.Equal(t, "nonce-1", claims.Nonce)
	assert.Nil(t, claims.ExpiresAt)
}

func TestVerifyAccess_Expiry(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		wantErr error
	}{
		{name: "fresh", elapsed: 0},
		{name: "one second before expiry", elapsed: 15*time.Minute - time.Second},
		{name: "exactly at expiry", elapsed: 15 * time.Minute, wantErr: ErrExpired},
		{name: "after expiry", elapsed: time.Hour, wantErr: ErrExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: start}
			codec := newTestCodec(t, "secret", clock)

			token, err := codec.SignAccess("u1", "n")
			require.NoError(t, err)

			clock.now = start.Add(tt.elapsed)
			_, err = codec.VerifyAccess(token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestVerify_InvalidSignature(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, "secret", clock)
	other := newTestCodec(t, "other-secret", clock)

	access, err := other.SignAccess("u1", "n")
	require.NoError(t, err)
	refresh, err := other.SignRefresh("n")
	require.NoError(t, err)

	own, err := codec.SignAccess("u1", "n")
	require.NoError(t, err)
	parts := strings.Split(own, ".")
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))

	noneToken, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{"sub": "u1"}).
		SignedString(gojwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "garbage", token: "not-a-jwt"},
		{name: "other secret", token: access},
		{name: "tampered signature", token: tampered},
		{name: "alg none", token: noneToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}

	_, err = codec.VerifyRefresh(refresh)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestVerify_ExpiredWithBadSignatureIsInvalid(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	clock := &fakeClock{now: start}
	codec := newTestCodec(t, "secret", clock)
	other := newTestCodec(t, "other-secret", clock)

	token, err := other.SignAccess("u1", "n")
	require.NoError(t, err)

	clock.now = start.Add(time.Hour)
	_, err = codec.VerifyAccess(token)
	assert.ErrorIs(t, err, ErrInvalidSignature, "подпись проверяется раньше срока действия")
}

func TestVerifyAccess_RequiresExpiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, "secret", clock)

	// refresh токен без exp нельзя использовать как access
	refresh, err := codec.SignRefresh("n")
	require.NoError(t, err)

	_, err = codec.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

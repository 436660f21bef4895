package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func newPair(t *testing.T, issuer string, expiry time.Duration) (*JWTGenerator, *JWTValidator) {
	t.Helper()
	gen, err := NewJWTGenerator(JWTGeneratorConfig{
		SecretKey: testSecret, Issuer: issuer, Audience: []string{"promptbuilder-api"}, ExpiryTime: expiry,
	})
	require.NoError(t, err)
	val, err := NewJWTValidator(JWTConfig{
		SigningMethod: "HS256", SecretKey: testSecret, Issuer: "promptbuilder", Audience: []string{"promptbuilder-api"},
	})
	require.NoError(t, err)
	return gen, val
}

func TestValidateToken(t *testing.T) {
	gen, val := newPair(t, "promptbuilder", time.Hour)
	token, err := gen.GenerateToken("user-1", "a@b.c", []string{"authenticated"})
	require.NoError(t, err)

	claims, err := val.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, []string{"authenticated"}, claims.Roles)
}

func TestValidateToken_Failures(t *testing.T) {
	_, val := newPair(t, "promptbuilder", time.Hour)

	wrongIssuer, _ := newPair(t, "someone-else", time.Hour)
	badIssuerToken, err := wrongIssuer.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	otherGen, err := NewJWTGenerator(JWTGeneratorConfig{SecretKey: "other", Issuer: "promptbuilder", Audience: []string{"promptbuilder-api"}})
	require.NoError(t, err)
	badSigToken, err := otherGen.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "missing", token: "", wantErr: ErrMissingToken},
		{name: "garbage", token: "not-a-jwt", wantErr: ErrInvalidToken},
		{name: "wrong issuer", token: badIssuerToken, wantErr: ErrInvalidClaims},
		{name: "wrong signature", token: badSigToken, wantErr: ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := val.ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewJWTValidator_Config(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{SigningMethod: "HS256"})
	assert.Error(t, err)
	_, err = NewJWTValidator(JWTConfig{SigningMethod: "ES256", SecretKey: "x"})
	assert.Error(t, err)
	_, err = NewJWTValidator(JWTConfig{SigningMethod: "RS256"})
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "u1", Roles: []string{"admin"}})
	user, ok := GetUserFromContext(ctx)
	require.True(t, ok)
	assert.True(t, user.HasRole("admin"))

	_, ok = GetUserFromContext(context.Background())
	assert.False(t, ok)
}

func TestSlidingWindowLimiter_Basic(t *testing.T) {
	l := NewSlidingWindowLimiter(2, time.Minute)
	now := time.Now()
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i, want := range []bool{true, true, false} {
		got, err := l.Allow(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, want, got, "request %d", i)
	}

	now = now.Add(time.Minute + time.Second)
	got, _ := l.Allow(ctx, "k")
	assert.True(t, got)

	require.NoError(t, l.Reset(ctx, "k"))
	got, _ = l.Allow(ctx, "k")
	assert.True(t, got)
}

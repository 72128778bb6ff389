package utils

import (
    "testing"
    "time"

    "github.com/golang-jwt/jwt/v5"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "golang.org/x/crypto/bcrypt"
)

func TestPasswordHashRoundTrip(t *testing.T) {
    hash, err := HashPassword("s3cret", bcrypt.MinCost)
    require.NoError(t, err)
    assert.NotEqual(t, "s3cret", hash)
    assert.True(t, VerifyPassword(hash, "s3cret"))
    assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestNewAccessTokenClaims(t *testing.T) {
    const secret = "test-secret"
    at, err := NewAccessToken(secret, 42, "CUSTOMER", 15)
    require.NoError(t, err)
    assert.WithinDuration(t, time.Now().Add(15*time.Minute), at.Exp, 5*time.Second)

    tok, err := jwt.Parse(at.Token, func(tok *jwt.Token) (interface{}, error) {
        return []byte(secret), nil
    })
    require.NoError(t, err)
    require.True(t, tok.Valid)

    claims := tok.Claims.(jwt.MapClaims)
    assert.Equal(t, float64(42), claims["sub"])
    assert.Equal(t, "CUSTOMER", claims["role"])
}

func TestRefreshTokenHashIsStable(t *testing.T) {
    rt, err := NewRefreshToken(7)
    require.NoError(t, err)
    assert.NotEmpty(t, rt.Raw)
    assert.WithinDuration(t, time.Now().AddDate(0, 0, 7), rt.Exp, 5*time.Second)

    // Hashing is deterministic and never stores the raw token.
    assert.Equal(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(rt.Raw))
    assert.NotEqual(t, rt.Raw, HashRefreshRaw(rt.Raw))

    other, err := NewRefreshToken(7)
    require.NoError(t, err)
    assert.NotEqual(t, HashRefreshRaw(rt.Raw), HashRefreshRaw(other.Raw))
}

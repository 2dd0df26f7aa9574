package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/ougirez/regstat/internal/pkg/constants"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthToken_RoundTrip(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "s3cret")

	raw, err := GenerateAuthToken(&AuthTokenWrapper{Secret: "s3cret"})
	require.NoError(t, err)

	token, err := ParseAuthToken(raw)
	require.NoError(t, err)
	assert.Equal(t, "s3cret", token.Secret)
	assert.Greater(t, token.ExpiresAt, time.Now().Unix())
}

func TestParseAuthToken_Rejects(t *testing.T) {
	viper.Set(constants.ViperSecretKey, "s3cret")

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseAuthToken("not-a-token")
		assert.ErrorIs(t, err, constants.ErrUnauthorized)
	})

	t.Run("signed with another key", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &AuthTokenWrapper{Secret: "s3cret"}).
			SignedString([]byte("other-key"))
		require.NoError(t, err)

		_, err = ParseAuthToken(raw)
		assert.ErrorIs(t, err, constants.ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		wrapper := &AuthTokenWrapper{Secret: "s3cret"}
		wrapper.ExpiresAt = time.Now().Add(-time.Hour).Unix()
		raw, err := GenerateAuthToken(wrapper)
		require.NoError(t, err)

		_, err = ParseAuthToken(raw)
		assert.ErrorIs(t, err, constants.ErrUnauthorized)
	})
}

package auth

import (
	"testing"
	"time"

	"github.com/aurum/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-unit-tests-only-32ch",
		AccessTokenExpiration: 15 * time.Minute,
		Issuer:                "aurum-backend",
	})
}

func TestJWTService(t *testing.T) {
	branchID := uuid.New()
	userID := uuid.New()

	t.Run("generates and validates a token", func(t *testing.T) {
		svc := testJWTService()

		token, expiresAt, err := svc.GenerateToken(GenerateTokenInput{
			BranchID: branchID,
			UserID:   userID,
			Username: "clerk",
			Roles:    []string{"cashier"},
		})
		require.NoError(t, err)
		require.NotEmpty(t, token)
		assert.WithinDuration(t, time.Now().Add(15*time.Minute), expiresAt, time.Minute)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, branchID.String(), claims.BranchID)
		assert.Equal(t, userID.String(), claims.UserID)
		assert.Equal(t, "clerk", claims.Username)
		assert.True(t, claims.HasRole("cashier"))
		assert.False(t, claims.HasRole("manager"))

		gotBranch, err := claims.GetBranchUUID()
		require.NoError(t, err)
		assert.Equal(t, branchID, gotBranch)
		gotUser, err := claims.GetUserUUID()
		require.NoError(t, err)
		assert.Equal(t, userID, gotUser)
	})

	t.Run("rejects a token signed with a different secret", func(t *testing.T) {
		svc := testJWTService()
		other := NewJWTService(config.JWTConfig{
			Secret:                "another-secret-key-for-unit-tests-32chr",
			AccessTokenExpiration: 15 * time.Minute,
			Issuer:                "aurum-backend",
		})

		token, _, err := other.GenerateToken(GenerateTokenInput{BranchID: branchID, UserID: userID})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		svc := NewJWTService(config.JWTConfig{
			Secret:                "test-secret-key-for-unit-tests-only-32ch",
			AccessTokenExpiration: -time.Minute,
			Issuer:                "aurum-backend",
		})

		token, _, err := svc.GenerateToken(GenerateTokenInput{BranchID: branchID, UserID: userID})
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		svc := testJWTService()
		_, err := svc.ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("remaining TTL is positive for a fresh token", func(t *testing.T) {
		svc := testJWTService()
		token, _, err := svc.GenerateToken(GenerateTokenInput{BranchID: branchID, UserID: userID})
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Greater(t, claims.GetRemainingTTL(), time.Duration(0))
	})
}

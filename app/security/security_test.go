package security

import (
	"testing"
	"time"

	"quill/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testUser() *models.User {
	return &models.User{
		ID:       "u1",
		Email:    "ada@example.com",
		Username: "ada",
		Role:     models.RoleAdmin,
	}
}

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)

	token, err := tokens.Issue(testUser())
	require.NoError(t, err)

	claims, err := tokens.Parse(token)
	require.NoError(t, err)

	p := claims.Principal()
	assert.Equal(t, "u1", p.ID)
	assert.Equal(t, "ada@example.com", p.Email)
	assert.Equal(t, "ada", p.Username)
	assert.Equal(t, models.RoleAdmin, p.Role)
	assert.Equal(t, "u1", claims.Subject)
}

func TestTokensRejects(t *testing.T) {
	tokens := NewTokens("secret", time.Hour)
	token, err := tokens.Issue(testUser())
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewTokens("other", time.Hour).Parse(token)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := tokens.Parse("not.a.token")
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewTokens("secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Parse(token)
		assert.Error(t, err)
	})
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword(hash, "correct horse"))
	assert.False(t, CheckPassword(hash, "battery staple"))
}

package credentials

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashIsSaltedPerCall(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("secret1")
	require.NoError(t, err)
	b, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "secret1")
	assert.True(t, h.Verify("secret1", a))
	assert.True(t, h.Verify("secret1", b))
}

func TestVerifyRejects(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	hashed, err := h.Hash("secret1")
	require.NoError(t, err)

	assert.False(t, h.Verify("secret2", hashed))
	assert.False(t, h.Verify("secret1", "not-a-bcrypt-hash"))
	assert.False(t, h.Verify("secret1", ""))
}

func TestHashTooLong(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("x", 100))

	assert.ErrorIs(t, err, ErrHashFailed)
}

func TestCostFallsBackToDefault(t *testing.T) {
	h := NewBcryptHasher(99).(*bcryptHasher)
	assert.Equal(t, bcrypt.DefaultCost, h.cost)
}

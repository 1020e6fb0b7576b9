package security_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/security"
)

var fastParams = config.PasswordConfig{
	ArgonMemoryKB:    32768,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := security.HashPassword("very-secure-password", fastParams)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=32768,t=1,p=1$"))

	ok, err := security.VerifyPassword("very-secure-password", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = security.VerifyPassword("bogus-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPasswordSaltsEachHash(t *testing.T) {
	a, err := security.HashPassword("Password123!", fastParams)
	require.NoError(t, err)
	b, err := security.HashPassword("Password123!", fastParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	_, err = security.HashPassword("", fastParams)
	assert.Error(t, err)
}

func TestVerifyPasswordBadHash(t *testing.T) {
	_, err := security.VerifyPassword("irrelevant", "not-a-hash")
	assert.ErrorIs(t, err, security.ErrInvalidHash)

	_, err = security.VerifyPassword("irrelevant", "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$aGFzaA")
	assert.ErrorIs(t, err, security.ErrInvalidHash)
}

func TestCheckPolicy(t *testing.T) {
	assert.NoError(t, security.CheckPolicy("Password123!"))
	assert.Error(t, security.CheckPolicy("short"))
	assert.Error(t, security.CheckPolicy("        "))
	assert.Error(t, security.CheckPolicy(strings.Repeat("a", security.MaxPasswordLength+1)))
}

func TestNeedsRehash(t *testing.T) {
	hash, err := security.HashPassword("Password123!", fastParams)
	require.NoError(t, err)
	assert.False(t, security.NeedsRehash(hash, fastParams))

	stronger := fastParams
	stronger.ArgonTime = 2
	assert.True(t, security.NeedsRehash(hash, stronger))
	assert.True(t, security.NeedsRehash("garbage", fastParams))
}

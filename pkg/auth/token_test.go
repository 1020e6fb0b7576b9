package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Devvfong/inventory-management/pkg/config"
	"github.com/Devvfong/inventory-management/pkg/enums"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{Secret: "secret", Issuer: "inventory-api", ExpirationMinutes: 30}
}

func TestMintAndParseAccessToken(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now().UTC()
	userID := uuid.New()
	supplierID := uuid.New()

	token, err := MintAccessToken(cfg, now, AccessTokenPayload{
		UserID:     userID,
		Email:      "supplier@example.com",
		Role:       enums.UserRoleSupplier,
		SupplierID: &supplierID,
		JTI:        "session-1",
	})
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)

	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, enums.UserRoleSupplier, claims.Role)
	require.NotNil(t, claims.SupplierID)
	assert.Equal(t, supplierID, *claims.SupplierID)
	assert.Equal(t, "supplier@example.com", claims.Email)
	assert.Equal(t, "session-1", claims.ID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, cfg.Issuer, claims.Issuer)
	assert.WithinDuration(t, now.Add(30*time.Minute), claims.ExpiresAt.Time, time.Second)
}

func TestMintAccessTokenGeneratesJTI(t *testing.T) {
	token, err := MintAccessToken(testJWTConfig(), time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	require.NoError(t, err)

	claims, err := ParseAccessToken(testJWTConfig(), token)
	require.NoError(t, err)
	_, err = uuid.Parse(claims.ID)
	assert.NoError(t, err)
	assert.Nil(t, claims.SupplierID)
}

func TestMintAccessTokenRejectsInvalidPayload(t *testing.T) {
	cfg := testJWTConfig()
	now := time.Now()

	_, err := MintAccessToken(cfg, now, AccessTokenPayload{UserID: uuid.New(), Role: "MANAGER"})
	assert.Error(t, err)

	_, err = MintAccessToken(cfg, now, AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleSupplier})
	assert.Error(t, err, "supplier without supplier id")

	_, err = MintAccessToken(cfg, now, AccessTokenPayload{Role: enums.UserRoleAdmin})
	assert.Error(t, err, "missing user id")

	_, err = MintAccessToken(config.JWTConfig{Issuer: "x", ExpirationMinutes: 1}, now, AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	assert.Error(t, err, "missing secret")
}

func TestParseAccessTokenRejectsTampering(t *testing.T) {
	cfg := testJWTConfig()
	token, err := MintAccessToken(cfg, time.Now(), AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin})
	require.NoError(t, err)

	other := cfg
	other.Secret = "different"
	_, err = ParseAccessToken(other, token)
	assert.Error(t, err)

	wrongIssuer := cfg
	wrongIssuer.Issuer = "someone-else"
	_, err = ParseAccessToken(wrongIssuer, token)
	assert.Error(t, err)
}

func TestParseAccessTokenRejectsNoneAlg(t *testing.T) {
	cfg := testJWTConfig()
	claims := AccessTokenClaims{
		UserID: uuid.New(),
		Role:   enums.UserRoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, unsigned)
	assert.Error(t, err)
}

func TestExpiredTokenOnlyParsesWithAllowExpired(t *testing.T) {
	cfg := testJWTConfig()
	issued := time.Now().Add(-2 * time.Hour)
	token, err := MintAccessToken(cfg, issued, AccessTokenPayload{UserID: uuid.New(), Role: enums.UserRoleAdmin, JTI: "old"})
	require.NoError(t, err)

	_, err = ParseAccessToken(cfg, token)
	assert.Error(t, err)

	claims, err := ParseAccessTokenAllowExpired(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, "old", claims.ID)
}

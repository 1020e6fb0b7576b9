package auth

import (
	"github.com/Devvfong/inventory-management/pkg/enums"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID     uuid.UUID
	Email      string
	Role       enums.UserRole
	SupplierID *uuid.UUID
	// JTI doubles as the redis session id; minted when empty.
	JTI string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID     uuid.UUID      `json:"user_id"`
	Email      string         `json:"email,omitempty"`
	Role       enums.UserRole `json:"role"`
	SupplierID *uuid.UUID     `json:"supplier_id,omitempty"`
	jwt.RegisteredClaims
}

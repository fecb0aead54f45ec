package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/mleong/mangobox-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID uuid.UUID
	Email  string
	Role   enums.AdminRole
	JTI    string
}

// AccessTokenClaims represents the typed JWT issued to admin users.
type AccessTokenClaims struct {
	UserID uuid.UUID       `json:"user_id"`
	Email  string          `json:"email"`
	Role   enums.AdminRole `json:"role"`
	jwt.RegisteredClaims
}

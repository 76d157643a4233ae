package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/saigonmart/backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT. Phone is
// set for customer sessions, Email for admin sessions.
type AccessTokenPayload struct {
	SubjectID uuid.UUID
	Role      enums.ActorRole
	Phone     string
	Email     string
	JTI       string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	SubjectID uuid.UUID       `json:"subject_id"`
	Role      enums.ActorRole `json:"role"`
	Phone     string          `json:"phone,omitempty"`
	Email     string          `json:"email,omitempty"`
	jwt.RegisteredClaims
}

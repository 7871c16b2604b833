package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the authenticated identity this service consumes: the
// acting user and the tenant scope. Token issuance lives elsewhere.
type Claims struct {
	UserID         uuid.UUID
	OrganizationID uuid.UUID
	Email          string
}

type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) *TokenValidator {
	return &TokenValidator{secret: []byte(secret)}
}

// ValidateToken parses a bearer token and extracts identity claims.
func (v *TokenValidator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	userID, err := claimUUID(mapClaims, "user_id")
	if err != nil {
		return nil, err
	}
	orgID, err := claimUUID(mapClaims, "organization_id")
	if err != nil {
		return nil, err
	}

	claims := &Claims{
		UserID:         userID,
		OrganizationID: orgID,
	}
	if email, ok := mapClaims["email"].(string); ok {
		claims.Email = email
	}
	return claims, nil
}

func claimUUID(claims jwt.MapClaims, key string) (uuid.UUID, error) {
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("token missing %s claim", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s claim: %w", key, err)
	}
	return id, nil
}

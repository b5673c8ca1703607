package jwtutil

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"peopledesk/pkg/config"
)

// UserClaims represents the JWT claims for an authenticated request. The
// identity provider validates the user; these claims carry the company id
// (tenant context) and actor id the data-access layer needs.
type UserClaims struct {
	Email     string `json:"email"`
	ActorID   string `json:"actor_id"`
	CompanyID string `json:"company_id,omitempty"` // Tenant context for multi-tenancy
	Role      string `json:"role,omitempty"`       // User's role within the company
	jwt.RegisteredClaims
}

// JWTUtil is a utility for JWT token operations
type JWTUtil struct {
	config *config.JWTConfig
}

// NewJWTUtil creates a new JWT utility with the given configuration
func NewJWTUtil(cfg *config.JWTConfig) *JWTUtil {
	return &JWTUtil{
		config: cfg,
	}
}

// GenerateToken creates a JWT token with user information
func (j *JWTUtil) GenerateToken(email, actorID string) (string, error) {
	return j.GenerateTokenWithCompany(email, actorID, "", "")
}

// GenerateTokenWithCompany creates a JWT token with user and company information
func (j *JWTUtil) GenerateTokenWithCompany(email, actorID, companyID, role string) (string, error) {
	if j.config == nil {
		return "", errors.New("JWT configuration not provided")
	}

	// Get signing key and expiration from configuration
	signingKey := j.config.SigningKey
	expirationHours := j.config.ExpirationHours

	claims := UserClaims{
		Email:     email,
		ActorID:   actorID,
		CompanyID: companyID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expirationHours) * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(signingKey))
}

// ValidateToken validates and parses the JWT token
func (j *JWTUtil) ValidateToken(tokenString string) (*UserClaims, error) {
	if j.config == nil {
		return nil, errors.New("JWT configuration not provided")
	}

	// Get signing key from configuration
	signingKey := j.config.SigningKey

	token, err := jwt.ParseWithClaims(
		tokenString,
		&UserClaims{},
		func(token *jwt.Token) (interface{}, error) {
			// Validate the signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(signingKey), nil
		},
	)

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*UserClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

package utils

import (
	"errors" // Token type errors
	"time"   // Time for token expiration

	"github.com/golang-jwt/jwt/v5" // JWT library
)

// Token types carried in the claims
const (
	AccessToken  = "access"
	RefreshToken = "refresh"
)

// ErrWrongTokenType is returned when a refresh token is used as an access token or vice versa
var ErrWrongTokenType = errors.New("wrong token type")

// JWT Claims
type Claims struct {
	UserID               uint   `json:"user_id"`    // Hunter ID
	Username             string `json:"username"`   // Hunter username
	IsAdmin              bool   `json:"is_admin"`   // Staff flag at issue time
	IsLeader             bool   `json:"is_leader"`  // Leads a guild at issue time
	TokenType            string `json:"token_type"` // access or refresh
	jwt.RegisteredClaims                            // Standard JWT claims
}

// Identity is what a token says about its holder
type Identity struct {
	UserID   uint
	Username string
	IsAdmin  bool
	IsLeader bool
}

// TokenPair is returned by the token endpoint
type TokenPair struct {
	Access  string `json:"access"`  // Short-lived access token
	Refresh string `json:"refresh"` // Long-lived refresh token
}

// GenerateJWT creates a signed token of the given type
func GenerateJWT(id Identity, tokenType, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    id.UserID,
		Username:  id.Username,
		IsAdmin:   id.IsAdmin,
		IsLeader:  id.IsLeader,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Token expiry
			IssuedAt:  jwt.NewNumericDate(now),          // Issued at current time
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims) // Create token with claims
	return token.SignedString([]byte(secret))                  // Sign the token with the secret
}

// GenerateTokenPair issues an access and a refresh token for the same identity
func GenerateTokenPair(id Identity, secret string, accessTTL, refreshTTL time.Duration) (TokenPair, error) {
	access, err := GenerateJWT(id, AccessToken, secret, accessTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := GenerateJWT(id, RefreshToken, secret, refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// ParseJWT parses and validates a JWT token string of the expected type
func ParseJWT(tokenStr, tokenType, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil // Return the secret key for validation
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err // Return error if parsing fails
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrSignatureInvalid
	}
	if claims.TokenType != tokenType {
		return nil, ErrWrongTokenType
	}
	return claims, nil
}

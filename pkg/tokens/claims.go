package tokens

import "github.com/golang-jwt/jwt/v5"

// AccessClaims identify the caller on ordinary requests. Subject is the
// user id, ID the jti.
type AccessClaims struct {
	jwt.RegisteredClaims
}

// RefreshClaims are only good for minting new pairs and for logout. The
// typ claim keeps an access token from being replayed as a refresh token.
type RefreshClaims struct {
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

const RefreshTokenType = "refresh"

package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vaibhavvyavahare/railtrace/config"
)

// TokenAudience is the audience every access token is issued for
const TokenAudience = "railtrace-api"

var jwtSigningMethod = jwt.SigningMethodHS256

// TokenClaims is the payload of a RailTrace access token
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer mints HS256 access tokens
type TokenIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer creates an issuer from the application config
func NewTokenIssuer(cfg *config.Config) *TokenIssuer {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &TokenIssuer{
		secret: cfg.SigningKey(),
		issuer: cfg.JWTIssuer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Mint issues a signed token for userID with the given role
func (t *TokenIssuer) Mint(userID, role string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, fmt.Errorf("token subject is required")
	}
	if !IsValidRole(role) {
		return "", time.Time{}, fmt.Errorf("invalid role %q", role)
	}

	now := t.now()
	expiresAt := now.Add(t.ttl)
	claims := TokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.issuer,
			Audience:  jwt.ClaimStrings{TokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwtSigningMethod, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing jwt: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse validates a token minted by this issuer and returns its claims
func (t *TokenIssuer) Parse(tokenString string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return t.secret, nil
		},
		jwt.WithIssuer(t.issuer),
		jwt.WithAudience(TokenAudience),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing jwt: %w", err)
	}
	return claims, nil
}

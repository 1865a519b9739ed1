package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrExpiredToken is returned for structurally valid but expired tokens.
	ErrExpiredToken = errors.New("token has expired")
	// ErrInvalidToken is returned for any other validation failure.
	ErrInvalidToken = errors.New("invalid token")
)

// JWTConfig configures the local-mode ticket resolver.
type JWTConfig struct {
	SecretKey string
	Issuer    string
}

// JWTResolver resolves bearer credentials into tickets when the service runs
// outside API Gateway. In Lambda mode the gateway authorizer has already
// validated the token and the resolver is bypassed.
type JWTResolver struct {
	config JWTConfig
}

// NewJWTResolver creates a resolver for HS256-signed tokens.
func NewJWTResolver(config JWTConfig) (*JWTResolver, error) {
	if config.SecretKey == "" {
		return nil, errors.New("jwt secret key is required")
	}
	return &JWTResolver{config: config}, nil
}

type ticketClaims struct {
	Groups []string `json:"cognito:groups"`
	jwt.RegisteredClaims
}

// Resolve validates the token and returns the caller's ticket.
func (r *JWTResolver) Resolve(token string) (*Ticket, error) {
	parsed, err := jwt.ParseWithClaims(token, &ticketClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(r.config.SecretKey), nil
	}, jwt.WithIssuer(r.config.Issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := parsed.Claims.(*ticketClaims)
	if !ok || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return &Ticket{Sub: claims.Subject, Groups: claims.Groups}, nil
}

// Package auth verifies bearer tokens issued by the account service.
package auth

import (
	"context"
	"fmt"

	"github.com/dkeye/GroupChat/internal/config"
	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload. sub, email and rol are all required.
type Claims struct {
	Email string `json:"email"`
	Rol   string `json:"rol"`
	jwt.RegisteredClaims
}

// JWTVerifier checks HS256 tokens against a shared secret.
type JWTVerifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewJWTVerifier(cfg config.JWTConfig) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	return &JWTVerifier{secret: []byte(cfg.Secret), parser: jwt.NewParser(opts...)}
}

func (v *JWTVerifier) Verify(_ context.Context, tokenString string) (domain.Principal, error) {
	token, err := v.parser.ParseWithClaims(tokenString, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return domain.Principal{}, fmt.Errorf("%w: %v", core.ErrInvalidToken, jwt.ErrTokenInvalidClaims)
	}

	p, err := domain.NewPrincipal(claims.Subject, claims.Email, claims.Rol)
	if err != nil {
		return domain.Principal{}, fmt.Errorf("%w: %v", core.ErrInvalidToken, err)
	}
	return p, nil
}

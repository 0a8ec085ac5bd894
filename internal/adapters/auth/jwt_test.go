package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dkeye/GroupChat/internal/config"
	"github.com/dkeye/GroupChat/internal/core"
	"github.com/dkeye/GroupChat/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var testCfg = config.JWTConfig{Secret: "s3cret", Issuer: "community"}

func sign(t *testing.T, method jwt.SigningMethod, key any, claims Claims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func validClaims() Claims {
	now := time.Now()
	return Claims{
		Email: "a@x.com",
		Rol:   "student",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u1",
			Issuer:    "community",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestVerifyDerivesPrincipal(t *testing.T) {
	v := NewJWTVerifier(testCfg)
	token := sign(t, jwt.SigningMethodHS256, []byte(testCfg.Secret), validClaims())

	p, err := v.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	want := domain.Principal{ID: "u1", Email: "a@x.com", Role: "student"}
	if p != want {
		t.Fatalf("principal = %+v, want %+v", p, want)
	}
}

func TestVerifyRejects(t *testing.T) {
	v := NewJWTVerifier(testCfg)

	expired := validClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	noEmail := validClaims()
	noEmail.Email = ""

	noRole := validClaims()
	noRole.Rol = ""

	noSubject := validClaims()
	noSubject.Subject = ""

	otherIssuer := validClaims()
	otherIssuer.Issuer = "elsewhere"

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	cases := map[string]string{
		"garbage":      "not-a-token",
		"wrong secret": sign(t, jwt.SigningMethodHS256, []byte("other"), validClaims()),
		"wrong alg":    sign(t, jwt.SigningMethodHS512, []byte(testCfg.Secret), validClaims()),
		"expired":      sign(t, jwt.SigningMethodHS256, []byte(testCfg.Secret), expired),
		"no email":     sign(t, jwt.SigningMethodHS256, []byte(testCfg.Secret), noEmail),
		"no role":      sign(t, jwt.SigningMethodHS256, []byte(testCfg.Secret), noRole),
		"no subject":   sign(t, jwt.SigningMethodHS256, []byte(testCfg.Secret), noSubject),
		"issuer":       sign(t, jwt.SigningMethodHS256, []byte(testCfg.Secret), otherIssuer),
		"no expiry":    sign(t, jwt.SigningMethodHS256, []byte(testCfg.Secret), noExpiry),
	}
	for name, token := range cases {
		if _, err := v.Verify(context.Background(), token); !errors.Is(err, core.ErrInvalidToken) {
			t.Fatalf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestVerifyWithoutIssuer(t *testing.T) {
	v := NewJWTVerifier(config.JWTConfig{Secret: testCfg.Secret})
	claims := validClaims()
	claims.Issuer = ""
	if _, err := v.Verify(context.Background(), sign(t, jwt.SigningMethodHS256, []byte(testCfg.Secret), claims)); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

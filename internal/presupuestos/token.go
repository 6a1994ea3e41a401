package presupuestos

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSigner mints and verifies the signed tokens embedded in callback
// links so patient responses cannot be forged or replayed against other
// quotes.
type TokenSigner struct {
	secret   []byte
	lifetime time.Duration
}

func NewTokenSigner(secret string, lifetime time.Duration) *TokenSigner {
	if lifetime == 0 {
		lifetime = 30 * 24 * time.Hour
	}
	return &TokenSigner{secret: []byte(secret), lifetime: lifetime}
}

type callbackClaims struct {
	PresupuestoID string `json:"presupuesto_id"`
	jwt.RegisteredClaims
}

// Mint issues a token bound to one quote.
func (s *TokenSigner) Mint(presupuestoID string) (string, error) {
	now := time.Now()
	claims := callbackClaims{
		PresupuestoID: presupuestoID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   presupuestoID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("presupuestos: sign callback token: %w", err)
	}
	return signed, nil
}

// Verify checks the token signature and expiry and that it was minted for
// the given quote.
func (s *TokenSigner) Verify(tokenString, presupuestoID string) error {
	var claims callbackClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	if claims.PresupuestoID != presupuestoID {
		return ErrInvalidToken
	}
	return nil
}

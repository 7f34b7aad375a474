package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vncsmyrnk/idolvote/internal/core/domain"
	"github.com/vncsmyrnk/idolvote/internal/core/ports"
)

// ErrTokenExpired is wrapped alongside domain.ErrAuthentication so callers can tell
// an expired session from a forged one.
var ErrTokenExpired = errors.New("token expired")

type Issuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewIssuer(secret []byte, expiry time.Duration) ports.TokenIssuer {
	return &Issuer{secret: secret, expiry: expiry, now: time.Now}
}

func (i *Issuer) Issue(claims domain.TokenClaims) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  claims.Subject,
		"type": string(claims.Type),
		"exp":  now.Add(i.expiry).Unix(),
		"iat":  now.Unix(),
	})
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (i *Issuer) Parse(tokenString string) (*domain.TokenClaims, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%w: %w", domain.ErrAuthentication, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%w: invalid token", domain.ErrAuthentication)
	}

	sub, _ := claims["sub"].(string)
	typ, _ := claims["type"].(string)
	return &domain.TokenClaims{Subject: sub, Type: domain.TokenType(typ)}, nil
}

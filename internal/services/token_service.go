package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const DefaultTokenTTL = time.Hour

type TokenConfig struct {
	Secret    string
	ExpiresIn time.Duration
	Issuer    string
}

// Claims is the access token payload; the user id travels in "sub".
type Claims struct {
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string { return c.Subject }

// TokenIssuer mints and validates HS256 access tokens.
type TokenIssuer struct {
	key    []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewTokenIssuer refuses to build without a signing secret.
func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrMissingSigningSecret
	}
	if cfg.ExpiresIn <= 0 {
		cfg.ExpiresIn = DefaultTokenTTL
	}
	return &TokenIssuer{
		key:    []byte(cfg.Secret),
		ttl:    cfg.ExpiresIn,
		issuer: cfg.Issuer,
		now:    time.Now,
	}, nil
}

func (t *TokenIssuer) TTL() time.Duration { return t.ttl }

// Mint signs a token for userID and returns it with its expiry.
func (t *TokenIssuer) Mint(userID string) (string, time.Time, error) {
	if userID == "" {
		return "", time.Time{}, errors.New("mint token: empty user id")
	}
	now := t.now()
	exp := now.Add(t.ttl)
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse validates signature, algorithm, expiry and issuer. Any failure is ErrUnauthorized.
func (t *TokenIssuer) Parse(tokenStr string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	}
	if t.issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// принимаем только HMAC
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return t.key, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	if claims.Subject == "" {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

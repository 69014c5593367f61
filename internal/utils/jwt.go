package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// ErrInvalidToken is the only error Decode returns: malformed, tampered and
// expired tokens are indistinguishable to callers.
var ErrInvalidToken = errors.New("invalid token")

// JWTConfig is everything the codec needs. Built once from config.Config.
type JWTConfig struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Claims are carried by both access and refresh tokens. Subject is the user email.
type Claims struct {
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type TokenCodec struct {
	cfg JWTConfig
	now func() time.Time
}

func NewTokenCodec(cfg JWTConfig) *TokenCodec {
	return &TokenCodec{cfg: cfg, now: time.Now}
}

// WithClock replaces the time source used for both minting and verification.
func (c *TokenCodec) WithClock(now func() time.Time) *TokenCodec {
	if now != nil {
		c.now = now
	}
	return c
}

func (c *TokenCodec) AccessTTL() time.Duration  { return c.cfg.AccessTTL }
func (c *TokenCodec) RefreshTTL() time.Duration { return c.cfg.RefreshTTL }

func (c *TokenCodec) MintAccess(subject, role string) (string, error) {
	return c.mint(subject, role, TokenTypeAccess, c.cfg.AccessTTL)
}

func (c *TokenCodec) MintRefresh(subject, role string) (string, error) {
	return c.mint(subject, role, TokenTypeRefresh, c.cfg.RefreshTTL)
}

func (c *TokenCodec) mint(subject, role, tokenType string, ttl time.Duration) (string, error) {
	now := c.now()
	claims := &Claims{
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    c.cfg.Issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(c.cfg.Secret))
}

// Decode verifies signature, algorithm and expiry and returns the claims.
func (c *TokenCodec) Decode(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	}
	if c.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.cfg.Issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(c.cfg.Secret), nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeAs is Decode plus a check of the token_type claim.
func (c *TokenCodec) DecodeAs(tokenString, tokenType string) (*Claims, error) {
	claims, err := c.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenType {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

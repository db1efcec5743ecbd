package auth

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/pgroom/pgroom-backend/pkg/config"
	"github.com/pgroom/pgroom-backend/pkg/errors"
)

// Roles issued by the identity service. Owners manage properties and can
// refund; tenants can only act on their own payments.
const (
	RoleOwner  = "owner"
	RoleTenant = "tenant"
)

// Claims is the access-token payload this service trusts.
type Claims struct {
	UserID   int64  `json:"uid"`
	Role     string `json:"role"`
	TenantID int64  `json:"tenant_id,omitempty"`
	jwt.RegisteredClaims
}

// Verifier parses and validates bearer tokens minted by the identity service.
type Verifier struct {
	secret []byte
	issuer string
}

func NewVerifier(cfg config.JWTConfig) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	return &Verifier{
		secret: []byte(cfg.Secret),
		issuer: cfg.Issuer,
	}, nil
}

// ParseAccessToken validates signature, expiry and issuer, returning the
// embedded claims. All failures map to the unauthorized taxonomy code.
func (v *Verifier) ParseAccessToken(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New(errors.CodeUnauthorized, "missing bearer token")
	}

	claims := &Claims{}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, parserOpts...)
	if err != nil {
		return nil, errors.Wrap(errors.CodeUnauthorized, err, "invalid access token")
	}
	if !token.Valid {
		return nil, errors.New(errors.CodeUnauthorized, "invalid access token")
	}
	if claims.UserID == 0 || claims.Role == "" {
		return nil, errors.New(errors.CodeUnauthorized, "token missing identity claims")
	}
	return claims, nil
}

// BearerFromHeader strips the scheme off an Authorization header value.
func BearerFromHeader(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New(errors.CodeUnauthorized, "missing authorization header")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New(errors.CodeUnauthorized, "authorization header must use the bearer scheme")
	}
	return strings.TrimSpace(parts[1]), nil
}

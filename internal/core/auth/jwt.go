package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"account-service/internal/domain"
)

type JWTer struct {
	Secret []byte
	Issuer string
	TTL    time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (j *JWTer) now() time.Time {
	if j.Now != nil {
		return j.Now()
	}
	return time.Now()
}

// Issue signs a token for subject with the configured default TTL.
func (j *JWTer) Issue(subject string) (string, time.Time, error) {
	return j.IssueTTL(subject, j.TTL)
}

func (j *JWTer) IssueTTL(subject string, ttl time.Duration) (string, time.Time, error) {
	now := j.now()
	exp := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    j.Issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return s, exp, nil
}

// Parse returns the token subject. Failures are domain.ErrExpiredToken or domain.ErrInvalidToken.
func (j *JWTer) Parse(tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}

	claims := &jwt.RegisteredClaims{}
	t, err := jwt.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return j.Secret, nil
	}, opts...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", fmt.Errorf("%w: %v", domain.ErrExpiredToken, err)
	case err != nil:
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	case !t.Valid || claims.Subject == "":
		return "", domain.ErrInvalidToken
	}
	return claims.Subject, nil
}

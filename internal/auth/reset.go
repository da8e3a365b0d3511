package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Password-reset tokens are signed HS256 JWTs embedding the user id. The
// user's fs_uniquifier rides along so that rotating it invalidates every
// outstanding token for that user.

const DefaultResetExpiry = 3600 * time.Second

var ErrInvalidResetToken = errors.New("invalid or expired reset token")

type resetClaims struct {
	Uniquifier string `json:"unq"`
	jwt.RegisteredClaims
}

// NewResetToken issues a reset token for the user, valid for expiry.
func NewResetToken(secret string, userID uint, uniquifier string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := resetClaims{
		Uniquifier: uniquifier,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			ID:        uuid.NewString(),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString([]byte(secret))
}

// VerifyResetToken checks signature and expiry, returning the embedded user id
// and uniquifier. Any failure maps to ErrInvalidResetToken.
func VerifyResetToken(secret, token string) (uint, string, error) {
	var claims resetClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return 0, "", ErrInvalidResetToken
	}
	id64, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil {
		return 0, "", ErrInvalidResetToken
	}
	return uint(id64), claims.Uniquifier, nil
}

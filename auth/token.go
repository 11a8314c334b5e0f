package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"klar/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are carried by API bearer tokens. The token id (jti) keys the
// workspace of API clients.
type Claims struct {
	Email string             `json:"email"`
	Tier  models.AccountTier `json:"tier"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for the account valid for ttl
func GenerateToken(acc models.Account, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: acc.Email,
		Tier:  acc.Tier,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   acc.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the signature and expiry of tokenStr
func ParseToken(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.ID == "" || claims.Email == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearer returns the token of an "Authorization: Bearer <token>"
// header value, or "" when the header has another shape.
func ExtractBearer(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

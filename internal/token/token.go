package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken covers malformed, badly signed and expired tokens
// alike; callers that care about an absent token handle that before
// calling Verify.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTTL is the validity window of an issued session token.
const DefaultTTL = 24 * time.Hour

type Claims struct {
	UserID int `json:"userId"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies session tokens with a shared HMAC secret.
type Issuer struct {
	secret []byte
	ttl    time.Duration
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	return &Issuer{secret: []byte(secret), ttl: ttl}
}

// Issue produces a signed token carrying the user id as its only
// custom claim.
func (i *Issuer) Issue(userID int) (string, error) {
	now := time.Now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "kukuri-chat",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	})
	return t.SignedString(i.secret)
}

// Verify validates the signature and expiry and returns the embedded
// user id.
func (i *Issuer) Verify(tokenString string) (int, error) {
	claims := &Claims{}
	t, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	})
	if err != nil || !t.Valid {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

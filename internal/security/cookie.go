package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a cookie value is malformed, badly signed or expired.
	ErrInvalidToken = errors.New("invalid token")
)

const cookieIssuer = "lighthouse"

// SessionClaims is the payload carried by the session cookie. It holds only the session id;
// the snapshot lives in the session store.
type SessionClaims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// CookieSigner signs and validates session cookie values with HMAC-SHA256.
type CookieSigner struct {
	secret []byte
	nowF   func() time.Time
}

// NewCookieSigner returns a CookieSigner keyed by secret.
func NewCookieSigner(secret string) *CookieSigner {
	return &CookieSigner{secret: []byte(secret), nowF: time.Now}
}

// Sign returns a compact JWT binding sessionID until expiresAt.
func (s *CookieSigner) Sign(sessionID string, expiresAt time.Time) (string, error) {
	if sessionID == "" {
		return "", ErrInvalidToken
	}
	now := s.nowF().UTC()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cookieIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		SessionID: sessionID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify parses value, checks signature, issuer and expiry, and returns the session id.
func (s *CookieSigner) Verify(value string) (string, error) {
	if value == "" {
		return "", ErrInvalidToken
	}
	token, err := jwt.ParseWithClaims(value, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	},
		jwt.WithIssuer(cookieIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.nowF),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

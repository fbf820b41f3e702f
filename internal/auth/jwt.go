package auth

import (
	"crypto/rand"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/justsurfingit/jobx/internal/apperr"
)

// Claims is what a verified token tells us about the caller.
type Claims struct {
	UserID uint
	Email  string
	Role   string
}

type jwtClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
	Role  string `json:"role"`
}

// TokenManager handles JWT token creation and validation
type TokenManager struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenManager creates a token manager. An empty secret is replaced with a
// random one, which invalidates tokens on every restart.
func NewTokenManager(secret string, expiry time.Duration) (*TokenManager, error) {
	if secret == "" {
		generated, err := generateSecureSecret(32)
		if err != nil {
			return nil, apperr.Wrap(err, "failed to generate JWT secret")
		}
		secret = generated
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), expiry: expiry, now: time.Now}, nil
}

// Issue signs a token for the given user.
func (m *TokenManager) Issue(userID uint, email, role string) (string, error) {
	now := m.now()
	claims := jwtClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "jobx",
		},
		Email: email,
		Role:  role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and validates a token, returning the claims
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	var claims jwtClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperr.Newf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now), jwt.WithIssuer("jobx"))
	if err != nil || !token.Valid {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "invalid token")
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, apperr.Wrap(apperr.ErrUnauthorized, "invalid token subject")
	}
	return &Claims{UserID: uint(id), Email: claims.Email, Role: claims.Role}, nil
}

// generateSecureSecret generates a cryptographically secure random hex string
func generateSecureSecret(bytes int) (string, error) {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		return "", apperr.Wrap(err, "failed to generate random bytes")
	}
	return hex.EncodeToString(b), nil
}

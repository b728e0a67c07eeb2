package utils

import (
	"errors"
	"sync"
	"time"

	"pgmanager/config"

	"github.com/golang-jwt/jwt"
)

var (
	secretMu  sync.RWMutex
	secretKey []byte
)

// ConfigureJWT sets the signing secret. Without it the configured JWT_SECRET is used.
func ConfigureJWT(secret string) {
	secretMu.Lock()
	defer secretMu.Unlock()
	secretKey = []byte(secret)
}

func signingKey() []byte {
	secretMu.RLock()
	defer secretMu.RUnlock()
	if len(secretKey) > 0 {
		return secretKey
	}
	return []byte(config.AppConfig.JWTSecret)
}

// AdminClaims are the claims carried by an admin session token.
type AdminClaims struct {
	Email string `json:"email"`
	jwt.StandardClaims
}

// GenerateToken creates a signed JWT for the admin that expires after ttl.
func GenerateToken(adminID, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AdminClaims{
		Email: email,
		StandardClaims: jwt.StandardClaims{
			Subject:   adminID,
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(signingKey())
}

// ValidateToken parses a token, checking the HMAC signature and expiry.
func ValidateToken(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return signingKey(), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}
	return claims, nil
}

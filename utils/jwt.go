package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"clinicbook/config"

	"github.com/golang-jwt/jwt"
)

func identitySecret() []byte {
	secret := config.AppConfig.JWTSecret
	if secret == "" {
		secret = "clinicbook-dev-secret"
	}
	return []byte(secret)
}

// GenerateIdentityToken creates a signed JWT for a patient subject. This is
// the identity-provider surface, distinct from the check-in credential.
func GenerateIdentityToken(subjectID string, duration time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": subjectID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(identitySecret())
}

// HashToken computes a SHA-256 hash of the token string.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ValidateIdentityToken parses and validates a token string and returns the token if valid.
func ValidateIdentityToken(tokenString string) (*jwt.Token, error) {
	return jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return identitySecret(), nil
	})
}

// ExtractSubjectFromToken extracts the subject ID from a valid identity token.
func ExtractSubjectFromToken(tokenString string) (string, error) {
	token, err := ValidateIdentityToken(tokenString)
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return "", errors.New("token does not contain a valid 'sub' claim")
	}

	return sub, nil
}

// Package token implements the check-in credential codec: an HS256-signed
// claim set sealed with AES-256-GCM into one opaque string. The credential
// binds a booking to its subject and authenticates the patient at the point
// of service without a live identity round-trip.
package token

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"time"

	"clinicbook/models"

	"github.com/golang-jwt/jwt"
)

// ErrTokenMalformed covers every decode failure: corruption, wrong key,
// truncation, unexpected structure. Callers fall back to manual check-in.
var ErrTokenMalformed = errors.New("malformed or unreadable check-in token")

// Codec issues and validates check-in credentials.
type Codec struct {
	signingKey []byte
	sealKey    []byte // 32 bytes for AES-256, derived from the seal secret
	validity   time.Duration
	skew       time.Duration
	now        func() time.Time
}

// NewCodec builds a codec from the signing and sealing secrets. The seal key
// is derived with SHA-256 so any passphrase yields a valid AES-256 key.
func NewCodec(signingSecret, sealSecret string, validity, skew time.Duration) *Codec {
	keyHash := sha256.Sum256([]byte(sealSecret))
	return &Codec{
		signingKey: []byte(signingSecret),
		sealKey:    keyHash[:],
		validity:   validity,
		skew:       skew,
		now:        time.Now,
	}
}

// Issue builds a credential for the booking: sign the claim set, seal it,
// and return one opaque base64 string. Failures here are non-fatal signals
// to fall back to manual check-in, never reasons to abort the booking.
func (c *Codec) Issue(booking *models.Booking) (string, error) {
	now := c.now()
	signed, err := c.signClaims(booking.ID, booking.SubjectID, now, now.Add(c.validity))
	if err != nil {
		return "", fmt.Errorf("failed to sign check-in claims: %w", err)
	}
	sealed, err := c.seal([]byte(signed))
	if err != nil {
		return "", fmt.Errorf("failed to seal check-in token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Parse opens and verifies a presented credential. It fails closed: any
// corruption, wrong key, or malformed structure yields ErrTokenMalformed and
// no partially trusted payload.
func (c *Codec) Parse(tokenString string) (*models.CheckinTokenPayload, error) {
	sealed, err := base64.RawURLEncoding.DecodeString(tokenString)
	if err != nil {
		return nil, ErrTokenMalformed
	}
	signed, err := c.open(sealed)
	if err != nil {
		return nil, ErrTokenMalformed
	}

	parsed, err := jwt.Parse(string(signed), func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return c.signingKey, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrTokenMalformed
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}
	payload, err := payloadFromClaims(claims)
	if err != nil {
		return nil, ErrTokenMalformed
	}
	return payload, nil
}

// Verify recomputes the expected signature from the referenced booking's
// immutable fields, compares in constant time, and checks the validity
// window with a small skew allowance on the issue instant.
func (c *Codec) Verify(payload *models.CheckinTokenPayload, booking *models.Booking) bool {
	expected, err := c.signClaims(booking.ID, booking.SubjectID, payload.IssuedAt, payload.ExpiresAt)
	if err != nil {
		return false
	}
	presented, err := c.signClaims(payload.BookingID, payload.SubjectID, payload.IssuedAt, payload.ExpiresAt)
	if err != nil {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(expected), []byte(presented)) != 1 {
		return false
	}

	now := c.now()
	if now.Before(payload.IssuedAt.Add(-c.skew)) {
		return false
	}
	return !now.After(payload.ExpiresAt)
}

// signClaims produces the canonical signed form of a claim set. jwt encodes
// claims deterministically for a fixed set of keys, so equal inputs yield
// equal signatures.
func (c *Codec) signClaims(bookingID, subjectID string, issuedAt, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"v":   models.CheckinTokenVersion,
		"bid": bookingID,
		"sub": subjectID,
		"iat": issuedAt.Unix(),
		"exp": expiresAt.Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.signingKey)
}

// seal encrypts with AES-256-GCM, prepending the nonce to the ciphertext.
func (c *Codec) seal(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.sealKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (c *Codec) open(sealed []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.sealKey)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(sealed) < gcm.NonceSize() {
		return nil, errors.New("sealed token too short")
	}
	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func payloadFromClaims(claims jwt.MapClaims) (*models.CheckinTokenPayload, error) {
	version, ok := claims["v"].(float64)
	if !ok || int(version) < 1 {
		return nil, errors.New("missing token version")
	}
	bid, ok := claims["bid"].(string)
	if !ok || bid == "" {
		return nil, errors.New("missing booking reference")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("missing subject reference")
	}
	iat, ok := claims["iat"].(float64)
	if !ok {
		return nil, errors.New("missing issue timestamp")
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, errors.New("missing expiry timestamp")
	}
	return &models.CheckinTokenPayload{
		Version:   int(version),
		BookingID: bid,
		SubjectID: sub,
		IssuedAt:  time.Unix(int64(iat), 0),
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

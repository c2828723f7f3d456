package models

import "time"

// CheckinTokenVersion tags the current token payload layout so older tokens
// stay verifiable when fields are added.
const CheckinTokenVersion = 1

// CheckinTokenPayload is the decoded content of a check-in credential. The
// encoded form is an HS256-signed claim set sealed with AES-GCM into one
// opaque string.
type CheckinTokenPayload struct {
	Version   int       `json:"v"`
	BookingID string    `json:"bid"`
	SubjectID string    `json:"sub"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// Package models holds the durable entities and message payloads of the
// identity service.
package models

// ProfileKind is the document-kind component of the store key. Every record
// this service owns carries it.
const ProfileKind = "PROFILE"

// Profile is the durable record describing one user, keyed by
// (Identity, ProfileKind). PasswordHash is stored in every record and is
// excluded from every outward-facing representation.
type Profile struct {
	Identity     string  `json:"uuid" dynamodbav:"uuid"`
	Kind         string  `json:"document" dynamodbav:"document"`
	Name         string  `json:"name" dynamodbav:"name"`
	LastName     string  `json:"lastName" dynamodbav:"lastName"`
	Email        string  `json:"email" dynamodbav:"email"`
	PasswordHash string  `json:"-" dynamodbav:"password"`
	Direction    *string `json:"direction" dynamodbav:"direction"`
	PhoneNumber  *string `json:"phoneNumber" dynamodbav:"phoneNumber"`
	AvatarURL    *string `json:"avatarUrl" dynamodbav:"avatarUrl"`
	CreatedAt    string  `json:"createdAt" dynamodbav:"createdAt"`
}

// Public returns a copy safe for responses. The hash already carries a
// json:"-" tag; clearing it as well keeps the copy safe even if it is
// re-marshalled with different tags.
func (p *Profile) Public() *Profile {
	q := *p
	q.PasswordHash = ""
	return &q
}

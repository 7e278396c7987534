package domain

import (
	"crypto/subtle"

	"github.com/google/uuid"
)

// ChallengeID identifies one pending two-factor login attempt.
type ChallengeID struct {
	value string
}

// ParseChallengeID accepts any UUID syntax uuid.Parse understands and keeps
// the canonical lower-case hyphenated form.
func ParseChallengeID(raw string) (ChallengeID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return ChallengeID{}, invalid(MalformedChallengeID)
	}
	return ChallengeID{value: id.String()}, nil
}

// NewChallengeID returns a fresh random (v4) id.
func NewChallengeID() ChallengeID {
	return ChallengeID{value: uuid.NewString()}
}

func (id ChallengeID) String() string { return id.value }

func (id ChallengeID) IsZero() bool { return id.value == "" }

// Equal compares in constant time.
func (id ChallengeID) Equal(other ChallengeID) bool {
	return subtle.ConstantTimeCompare([]byte(id.value), []byte(other.value)) == 1
}

// Challenge is the pending (id, code) pair stored per email.
type Challenge struct {
	ID   ChallengeID
	Code OneTimeCode
}

// Matches reports whether both fields equal the submitted pair. Both
// comparisons always run so a mismatch in either looks the same.
func (c Challenge) Matches(id ChallengeID, code OneTimeCode) bool {
	idOK := subtle.ConstantTimeCompare([]byte(c.ID.value), []byte(id.value))
	codeOK := subtle.ConstantTimeCompare([]byte(c.Code.Expose()), []byte(code.Expose()))
	return idOK&codeOK == 1
}

package user

import (
	"time"

	"github.com/google/uuid"
)

// NewID returns a time-ordered id; the leading 48 bits are the creation time.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return id.String()
}

func NewFromRegisterInput(in RegisterInput, passwordHash string, now time.Time) User {
	return User{
		ID:           NewID(),
		Email:        in.Email,
		PasswordHash: passwordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Mobile:       in.Mobile,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

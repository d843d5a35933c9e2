package user

import (
	"strings"
	"time"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Mobile       string    `json:"mobile"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// SameEmail reports whether two addresses are the same key. Emails are unique
// without regard to letter case.
func SameEmail(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Email        *string
	PasswordHash *string
	FirstName    *string
	LastName     *string
	Mobile       *string
}

func (p Patch) IsEmpty() bool {
	return p.Email == nil && p.PasswordHash == nil && p.FirstName == nil && p.LastName == nil && p.Mobile == nil
}

// Apply merges the non-nil fields of p into u.
func (p Patch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Mobile != nil {
		u.Mobile = *p.Mobile
	}
}

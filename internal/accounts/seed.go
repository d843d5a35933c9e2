package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
)

type seedUser struct {
	id        string
	email     string
	password  string
	firstName string
	lastName  string
	mobile    string
	createdAt time.Time
}

var demoUsers = []seedUser{
	{
		id:        "1",
		email:     "test@example.com",
		password:  "password123",
		firstName: "John",
		lastName:  "Doe",
		mobile:    "+1234567890",
		createdAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	},
	{
		id:        "2",
		email:     "demo@test.com",
		password:  "demo123",
		firstName: "Jane",
		lastName:  "Smith",
		mobile:    "+0987654321",
		createdAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	},
}

// SeedDemoUsers inserts the demo identities. Ones whose email is already
// registered are skipped, so calling it twice is harmless.
func (s *Service) SeedDemoUsers(ctx context.Context) (int, error) {
	added := 0

	for _, d := range demoUsers {
		hash, err := s.hasher.Hash(d.password)
		if err != nil {
			return added, fmt.Errorf("hash demo password for %s: %w", d.email, err)
		}

		_, err = s.users.Create(ctx, user.User{
			ID:           d.id,
			Email:        d.email,
			PasswordHash: hash,
			FirstName:    d.firstName,
			LastName:     d.lastName,
			Mobile:       d.mobile,
			CreatedAt:    d.createdAt,
			UpdatedAt:    d.createdAt,
		})
		if err != nil {
			if errors.Is(err, user.ErrDuplicateEmail) {
				continue
			}
			return added, fmt.Errorf("seed %s: %w", d.email, err)
		}
		added++
	}

	s.refreshUserCount(ctx)
	s.log.InfoContext(ctx, "demo users seeded", "added", added)

	return added, nil
}

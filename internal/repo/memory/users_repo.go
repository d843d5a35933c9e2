package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
)

// UsersRepo keeps users in insertion order. Lookups are linear scans; the set
// is small and lives only as long as the process.
type UsersRepo struct {
	mu    sync.RWMutex
	items []user.User
	now   func() time.Time
}

func NewUsersRepo() *UsersRepo {
	return &UsersRepo{
		items: make([]user.User, 0),
		now:   time.Now,
	}
}

// Create appends u unless another record already has its email.
func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByEmail(u.Email) != -1 {
		return user.User{}, user.ErrDuplicateEmail
	}

	r.items = append(r.items, u)

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByEmail(email)
	if i == -1 {
		return user.User{}, user.ErrUserNotFound
	}

	return r.items[i], nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByID(id)
	if i == -1 {
		return user.User{}, user.ErrUserNotFound
	}

	return r.items[i], nil
}

// Update merges p into the record with the given id. A changed email is
// re-checked against every other record.
func (r *UsersRepo) Update(ctx context.Context, id string, p user.Patch) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i == -1 {
		return user.User{}, user.ErrUserNotFound
	}

	if p.Email != nil && *p.Email != r.items[i].Email {
		for j := range r.items {
			if j != i && user.SameEmail(r.items[j].Email, *p.Email) {
				return user.User{}, user.ErrEmailTaken
			}
		}
	}

	if !p.IsEmpty() {
		p.Apply(&r.items[i])
		r.items[i].UpdatedAt = r.now()
	}

	return r.items[i], nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) (user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexByID(id)
	if i == -1 {
		return user.User{}, user.ErrUserNotFound
	}

	removed := r.items[i]
	r.items = append(r.items[:i], r.items[i+1:]...)

	return removed, nil
}

// List returns a snapshot; later mutations do not show through.
func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]user.User, len(r.items))
	copy(out, r.items)

	return out, nil
}

func (r *UsersRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items), nil
}

// callers hold r.mu
func (r *UsersRepo) indexByEmail(email string) int {
	for i := range r.items {
		if user.SameEmail(r.items[i].Email, email) {
			return i
		}
	}
	return -1
}

func (r *UsersRepo) indexByID(id string) int {
	for i := range r.items {
		if r.items[i].ID == id {
			return i
		}
	}
	return -1
}

package observability

import (
	"errors"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
)

// ObserveStore times one store operation and counts its outcome. A nil
// receiver is allowed so callers need not check whether metrics are on.
func (p *Prom) ObserveStore(op string, start time.Time, err error) {
	if p == nil {
		return
	}

	p.StoreOpDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	p.StoreOpResults.WithLabelValues(op, classifyStoreErr(err)).Inc()
}

func (p *Prom) SetUsers(n int) {
	if p == nil {
		return
	}
	p.UsersTotal.Set(float64(n))
}

func (p *Prom) SetLoggedIn(loggedIn bool) {
	if p == nil {
		return
	}
	if loggedIn {
		p.SessionLoggedIn.Set(1)
		return
	}
	p.SessionLoggedIn.Set(0)
}

func (p *Prom) SessionStreamOpened() {
	if p == nil {
		return
	}
	p.SessionSubscribers.Inc()
}

func (p *Prom) SessionStreamClosed() {
	if p == nil {
		return
	}
	p.SessionSubscribers.Dec()
}

func (p *Prom) RateLimited(route string) {
	if p == nil {
		return
	}
	p.RateLimitedTotal.WithLabelValues(route).Inc()
}

func classifyStoreErr(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, user.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, user.ErrUserNotFound):
		return "not_found"
	case errors.Is(err, user.ErrInvalidPassword):
		return "invalid_password"
	case errors.Is(err, user.ErrEmailTaken):
		return "email_taken"
	case errors.Is(err, user.ErrPasswordTooLong):
		return "password_too_long"
	default:
		return "internal"
	}
}

// Package accounts implements registration, login and user management on top
// of a user repository, and drives the process-wide session.
package accounts

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/userhub/internal/domain/user"
	"github.com/geocoder89/userhub/internal/notifications"
	"github.com/geocoder89/userhub/internal/observability"
	"github.com/geocoder89/userhub/internal/security"
	"github.com/geocoder89/userhub/internal/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type UsersRepo interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, id string, p user.Patch) (user.User, error)
	Delete(ctx context.Context, id string) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	Count(ctx context.Context) (int, error)
}

type PasswordHasher interface {
	Hash(plain string) (string, error)
	Check(hash, plain string) error
}

type Service struct {
	users    UsersRepo
	session  *session.Session
	hasher   PasswordHasher
	log      *slog.Logger
	prom     *observability.Prom
	notifier notifications.Notifier
	tracer   trace.Tracer
	now      func() time.Time
}

// NewService wires the store. prom may be nil.
func NewService(users UsersRepo, sess *session.Session, hasher PasswordHasher, log *slog.Logger, prom *observability.Prom) *Service {
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		users:   users,
		session: sess,
		hasher:  hasher,
		log:     log,
		prom:    prom,
		tracer:  otel.Tracer("github.com/geocoder89/userhub/internal/accounts"),
		now:     time.Now,
	}
}

// WithNotifier sends a welcome notice after each registration. A failed
// notice is logged and never fails the registration.
func (s *Service) WithNotifier(n notifications.Notifier) *Service {
	s.notifier = n
	return s
}

func (s *Service) Register(ctx context.Context, in user.RegisterInput) (res user.Result) {
	ctx, finish := s.begin(ctx, "register")
	defer func() { finish(res.Err) }()

	// cheap pre-check so a duplicate does not pay for bcrypt; Create re-checks under lock
	_, err := s.users.GetByEmail(ctx, in.Email)
	if err == nil {
		return user.Fail(user.ErrDuplicateEmail, user.MsgDuplicateEmail)
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return s.internal(ctx, "register lookup failed", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooLong) {
			return user.Fail(user.ErrPasswordTooLong, user.MsgPasswordTooLong)
		}
		return s.internal(ctx, "hash password failed", err)
	}

	created, err := s.users.Create(ctx, user.NewFromRegisterInput(in, hash, s.now().UTC()))
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return user.Fail(user.ErrDuplicateEmail, user.MsgDuplicateEmail)
		}
		return s.internal(ctx, "create user failed", err)
	}

	s.refreshUserCount(ctx)
	s.log.InfoContext(ctx, "user registered", "user_id", created.ID)
	s.welcome(ctx, created)

	return user.OK(user.MsgRegistered, &created)
}

func (s *Service) Login(ctx context.Context, email, password string) (res user.Result) {
	ctx, finish := s.begin(ctx, "login")
	defer func() { finish(res.Err) }()

	found, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.Fail(user.ErrUserNotFound, user.MsgLoginUnknownEmail)
		}
		return s.internal(ctx, "login lookup failed", err)
	}

	if err := s.hasher.Check(found.PasswordHash, password); err != nil {
		if errors.Is(err, security.ErrPasswordMismatch) {
			return user.Fail(user.ErrInvalidPassword, user.MsgInvalidPassword)
		}
		return s.internal(ctx, "password check failed", err)
	}

	s.session.SetCurrent(found)
	s.prom.SetLoggedIn(true)
	s.log.InfoContext(ctx, "login succeeded", "user_id", found.ID)

	return user.OK(user.MsgLoggedIn, &found)
}

func (s *Service) UpdateUser(ctx context.Context, id string, in user.UpdateInput) (res user.Result) {
	ctx, finish := s.begin(ctx, "update")
	defer func() { finish(res.Err) }()

	patch := user.Patch{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Mobile:    in.Mobile,
	}

	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			if errors.Is(err, security.ErrPasswordTooLong) {
				return user.Fail(user.ErrPasswordTooLong, user.MsgPasswordTooLong)
			}
			return s.internal(ctx, "hash password failed", err)
		}
		patch.PasswordHash = &hash
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, user.ErrUserNotFound):
			return user.Fail(user.ErrUserNotFound, user.MsgNotFound)
		case errors.Is(err, user.ErrEmailTaken):
			return user.Fail(user.ErrEmailTaken, user.MsgEmailTaken)
		default:
			return s.internal(ctx, "update user failed", err)
		}
	}

	s.log.InfoContext(ctx, "user updated", "user_id", updated.ID)

	return user.OK(user.MsgUpdated, &updated)
}

func (s *Service) DeleteUser(ctx context.Context, id string) (res user.Result) {
	ctx, finish := s.begin(ctx, "delete")
	defer func() { finish(res.Err) }()

	removed, err := s.users.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return user.Fail(user.ErrUserNotFound, user.MsgNotFound)
		}
		return s.internal(ctx, "delete user failed", err)
	}

	s.refreshUserCount(ctx)
	s.log.InfoContext(ctx, "user deleted", "user_id", removed.ID)

	return user.OK(user.MsgDeleted, nil)
}

// GetAllUsers returns a snapshot of every record in registration order.
func (s *Service) GetAllUsers(ctx context.Context) ([]user.User, error) {
	return s.users.List(ctx)
}

func (s *Service) CountUsers(ctx context.Context) (int, error) {
	return s.users.Count(ctx)
}

func (s *Service) Logout(ctx context.Context) {
	s.session.Logout()
	s.prom.SetLoggedIn(false)
	s.log.InfoContext(ctx, "logged out")
}

func (s *Service) CurrentUser() (user.User, bool) {
	return s.session.Current()
}

func (s *Service) IsLoggedIn() bool {
	return s.session.IsLoggedIn()
}

func (s *Service) Session() *session.Session {
	return s.session
}

// begin opens a span for op; finish records the outcome on the span and in metrics.
func (s *Service) begin(ctx context.Context, op string) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "accounts."+op, trace.WithAttributes(attribute.String("userhub.op", op)))

	return ctx, func(err error) {
		if err != nil {
			span.SetAttributes(attribute.String("userhub.failure", err.Error()))
			if errors.Is(err, user.ErrInternal) {
				span.SetStatus(codes.Error, err.Error())
			}
		}
		span.End()
		s.prom.ObserveStore(op, start, err)
	}
}

func (s *Service) internal(ctx context.Context, msg string, err error) user.Result {
	s.log.ErrorContext(ctx, msg, "err", err)

	return user.Fail(errors.Join(user.ErrInternal, err), user.MsgInternal)
}

func (s *Service) welcome(ctx context.Context, u user.User) {
	if s.notifier == nil {
		return
	}

	err := s.notifier.SendWelcome(ctx, notifications.WelcomeInput{
		UserID:    u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
	})
	if err != nil {
		s.log.WarnContext(ctx, "welcome notice not sent", "user_id", u.ID, "err", err)
	}
}

func (s *Service) refreshUserCount(ctx context.Context) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return
	}
	s.prom.SetUsers(n)
}

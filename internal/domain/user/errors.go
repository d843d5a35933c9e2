package user

import "errors"

var (
	ErrDuplicateEmail  = errors.New("user with this email already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	// ErrEmailTaken is returned when an update would give a record the email of another record.
	ErrEmailTaken = errors.New("email already exists")
	ErrInternal   = errors.New("internal error")
	// ErrPasswordTooLong is returned for passwords over bcrypt's 72-byte input limit.
	ErrPasswordTooLong = errors.New("password too long")
)

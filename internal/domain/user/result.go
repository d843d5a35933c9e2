package user

// Messages shown to whoever called the operation.
const (
	MsgRegistered        = "Registration successful!"
	MsgDuplicateEmail    = "User with this email already exists"
	MsgLoggedIn          = "Login successful!"
	MsgLoginUnknownEmail = "User not found. Please register first."
	MsgInvalidPassword   = "Invalid password"
	MsgUpdated           = "User updated successfully!"
	MsgDeleted           = "User deleted successfully!"
	MsgNotFound          = "User not found"
	MsgEmailTaken        = "Email already exists"
	MsgPasswordTooLong   = "Password must be at most 72 bytes"
	MsgInternal          = "Something went wrong. Please try again."
)

// Result is the outcome of a store operation. Failures are values, not panics;
// Err holds the sentinel so callers can branch with errors.Is.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
	Err     error  `json:"-"`
}

func OK(message string, u *User) Result {
	return Result{Success: true, Message: message, User: u}
}

func Fail(err error, message string) Result {
	return Result{Success: false, Message: message, Err: err}
}

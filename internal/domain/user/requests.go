package user

// mobile and maxbytes are custom rules registered by the HTTP layer. mobile
// allows an optional leading +, no leading zero and at most 16 digits.
// Passwords are capped in bytes because bcrypt reads at most 72 of them.
type RegisterRequest struct {
	Email           string `json:"email" binding:"required,email,max=254"`
	Password        string `json:"password" binding:"required,min=6,maxbytes=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=Password"`
	FirstName       string `json:"firstName" binding:"required,min=2,max=80"`
	LastName        string `json:"lastName" binding:"required,min=2,max=80"`
	Mobile          string `json:"mobile" binding:"required,mobile"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest is a partial update; absent fields keep their value.
type UpdateUserRequest struct {
	Email     *string `json:"email" binding:"omitempty,email,max=254"`
	Password  *string `json:"password" binding:"omitempty,min=6,maxbytes=72"`
	FirstName *string `json:"firstName" binding:"omitempty,min=2,max=80"`
	LastName  *string `json:"lastName" binding:"omitempty,min=2,max=80"`
	Mobile    *string `json:"mobile" binding:"omitempty,mobile"`
}

// RegisterInput is what the store needs to create a record.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Mobile    string
}

func (r RegisterRequest) Input() RegisterInput {
	return RegisterInput{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Mobile:    r.Mobile,
	}
}

// UpdateInput mirrors UpdateUserRequest with the plaintext password still in it.
type UpdateInput struct {
	Email     *string
	Password  *string
	FirstName *string
	LastName  *string
	Mobile    *string
}

func (r UpdateUserRequest) Input() UpdateInput {
	return UpdateInput{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Mobile:    r.Mobile,
	}
}

// Package user holds accounts: the User model and its form validation,
// repositories, password hashing and the login/registration service.
package user

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

// User is an account. Password and PasswordRepeat only carry form input;
// the stored credential is PasswordHash.
type User struct {
	CreatedAt      time.Time `json:"created_at"`
	Username       string    `json:"username" form:"username" validate:"required,excludesall=/?#"`
	Email          string    `json:"email" form:"email" validate:"required,email"`
	Password       string    `json:"-" form:"password" validate:"required,bcryptlen"`
	PasswordRepeat string    `json:"-" form:"password2" validate:"omitempty,eqfield=Password"`
	PasswordHash   string    `json:"password_hash,omitempty" form:"-"`
	ID             int64     `json:"id"`
}

// Public returns a copy without any credential, safe to keep in a session.
func (u *User) Public() *User {
	return &User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// ValidationError is a form input problem. Its message is shown to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// maxPasswordBytes is the longest input bcrypt accepts. The max= rule
// counts runes, so the limit has its own rule.
const maxPasswordBytes = 72

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
			return len(fl.Field().String()) <= maxPasswordBytes
		})
	})
	return validate
}

// validationMessages maps "Field.tag" to the message of the first failing rule.
var validationMessages = map[string]string{
	"Username.required":      "You have to enter a username",
	"Username.excludesall":   "Username must not contain /, ? or #",
	"Email.required":         "You have to enter a valid email address",
	"Email.email":            "You have to enter a valid email address",
	"Password.required":      "You have to enter a password",
	"Password.bcryptlen":     "Password must be at most 72 bytes",
	"PasswordRepeat.eqfield": "The two passwords do not match",
}

// Validate checks registration input. It returns nil or a *ValidationError
// describing the first problem, in form field order.
func (u *User) Validate() error {
	u.Username = strings.TrimSpace(u.Username)
	u.Email = strings.TrimSpace(u.Email)

	err := getValidator().Struct(u)
	if err == nil {
		return nil
	}

	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return &ValidationError{Message: err.Error()}
	}

	first := fields[0]
	if msg, ok := validationMessages[first.StructField()+"."+first.Tag()]; ok {
		return &ValidationError{Message: msg}
	}
	return &ValidationError{Message: first.Error()}
}

// LoginResult is the outcome of a login attempt: either User or Error is set.
type LoginResult struct {
	User  *User
	Error string
}

// OK reports whether the attempt resolved a user.
func (r LoginResult) OK() bool { return r.User != nil }

package auth

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"
)

// MinPasswordLength is counted in runes.
const MinPasswordLength = 6

type Code int

const (
	InvalidCredentials Code = iota + 1
	UserNotFound
	UserDisabled
	WeakPassword
	EmailInUse
	InvalidEmail
)

func (c Code) String() string {
	switch c {
	case InvalidCredentials:
		return "invalid credentials"
	case UserNotFound:
		return "user not found"
	case UserDisabled:
		return "user disabled"
	case WeakPassword:
		return "weak password"
	case EmailInUse:
		return "email in use"
	case InvalidEmail:
		return "invalid email"
	default:
		return fmt.Sprintf("code %d", int(c))
	}
}

// AuthError is returned by Provider operations. Its Message can be shown to the user.
type AuthError struct {
	Code Code
	Err  error // optional cause
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth: %s: %v", e.Code, e.Err)
	}
	return "auth: " + e.Code.String()
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Message returns a human-readable message.
func (e *AuthError) Message() string {
	switch e.Code {
	case InvalidCredentials:
		return "Wrong email address or password."
	case UserNotFound:
		return "There is no account with this email address."
	case UserDisabled:
		return "This account has been disabled."
	case WeakPassword:
		return fmt.Sprintf("The password must have at least %d characters.", MinPasswordLength)
	case EmailInUse:
		return "This email address is already registered."
	case InvalidEmail:
		return "This is not a valid email address."
	default:
		return "Authentication failed."
	}
}

// HasCode reports whether err is an AuthError with the given code.
func HasCode(err error, code Code) bool {
	var ae *AuthError
	return errors.As(err, &ae) && ae.Code == code
}

// errors returned by UserStore implementations
var (
	ErrMailTaken     = errors.New("mail address is already registered")
	ErrUserNotFound  = errors.New("user not found")
	ErrWrongPassword = errors.New("wrong password")
)

// CleanEmail trims and lowercases an email address.
func CleanEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail accepts plain addresses like "a@example.com" only, no display names.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return &AuthError{Code: InvalidEmail, Err: err}
	}
	if addr.Address != email || addr.Name != "" {
		return &AuthError{Code: InvalidEmail}
	}
	return nil
}

func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &AuthError{Code: WeakPassword}
	}
	return nil
}

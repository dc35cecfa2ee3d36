package auth

import (
	"context"
	"time"
)

type User struct {
	UID      string
	Email    string
	Disabled bool
	Created  time.Time
}

// UserStore holds the credentials. Emails are expected to be cleaned with CleanEmail.
type UserStore interface {
	// GetUser returns ErrUserNotFound if there is no such user.
	GetUser(ctx context.Context, uid string) (User, error)
	// InsertUser returns ErrMailTaken if the email address is registered already.
	InsertUser(ctx context.Context, email, password string) (User, error)
	// LoginUser returns ErrUserNotFound or ErrWrongPassword. Disabled users are returned as well.
	LoginUser(ctx context.Context, email, password string) (User, error)
	SetDisabled(ctx context.Context, email string, disabled bool) error
}

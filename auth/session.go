package auth

import (
	"context"
	"time"

	"github.com/wansing/artigo/core"
)

// Session is the signed-in state of a client. A nil *Session means signed out.
type Session struct {
	PrincipalID string
	Email       string
	IDToken     string
	ExpiresAt   time.Time
}

// Author returns the principal as an article author.
func (s *Session) Author() core.Author {
	return core.Author{
		UID:   s.PrincipalID,
		Email: s.Email,
	}
}

// Provider manages the session of the calling client. The client is identified by ctx.
type Provider interface {
	Current(ctx context.Context) (*Session, error)
	Register(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context) error

	// Subscribe delivers the current session once, then every change, until unsubscribe is called.
	// Unsubscribe is idempotent.
	Subscribe(ctx context.Context, onChange func(*Session)) (unsubscribe func(), err error)
}

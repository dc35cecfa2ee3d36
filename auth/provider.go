package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/alexedwards/scs/v2"
	"github.com/wansing/artigo/logging"
	"github.com/wansing/artigo/util"
)

// session keys
const (
	clientKey = "client"
	tokenKey  = "token"
)

// SessionProvider keeps the ID token in the scs session of the client.
// The context passed to its methods must carry scs session data, see scs.SessionManager.LoadAndSave.
type SessionProvider struct {
	Hub      *Hub
	Log      logging.Logger
	Sessions *scs.SessionManager
	Tokens   *Tokens
	Users    UserStore
}

func NewSessionProvider(sessions *scs.SessionManager, users UserStore, tokens *Tokens, log logging.Logger) *SessionProvider {
	return &SessionProvider{
		Hub:      NewHub(),
		Log:      log,
		Sessions: sessions,
		Tokens:   tokens,
		Users:    users,
	}
}

// Current returns nil if no valid token is stored, or if its user is gone or disabled.
func (p *SessionProvider) Current(ctx context.Context) (*Session, error) {

	token := p.Sessions.GetString(ctx, tokenKey)
	if token == "" {
		return nil, nil
	}

	claims, err := p.Tokens.Verify(token)
	if err != nil {
		p.Log.Debug(ctx, "discarding token", "err", err)
		return nil, nil
	}

	user, err := p.Users.GetUser(ctx, claims.Subject)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, nil
	case err != nil:
		return nil, err
	}
	if user.Disabled {
		return nil, nil
	}

	return &Session{
		PrincipalID: user.UID,
		Email:       user.Email,
		IDToken:     token,
		ExpiresAt:   claims.ExpiresAt.Time,
	}, nil
}

func (p *SessionProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {

	email = CleanEmail(email)
	if email == "" || password == "" {
		return nil, &AuthError{Code: InvalidCredentials}
	}

	user, err := p.Users.LoginUser(ctx, email, password)
	switch {
	case errors.Is(err, ErrUserNotFound):
		return nil, &AuthError{Code: UserNotFound}
	case errors.Is(err, ErrWrongPassword):
		return nil, &AuthError{Code: InvalidCredentials}
	case err != nil:
		return nil, err
	}
	if user.Disabled {
		return nil, &AuthError{Code: UserDisabled}
	}

	return p.start(ctx, user)
}

// Register creates a user and signs it in.
func (p *SessionProvider) Register(ctx context.Context, email, password string) (*Session, error) {

	email = CleanEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	user, err := p.Users.InsertUser(ctx, email, password)
	switch {
	case errors.Is(err, ErrMailTaken):
		return nil, &AuthError{Code: EmailInUse}
	case err != nil:
		return nil, err
	}

	p.Log.Info(ctx, "user registered", "principal", user.UID)

	return p.start(ctx, user)
}

func (p *SessionProvider) start(ctx context.Context, user User) (*Session, error) {

	token, expiresAt, err := p.Tokens.Issue(user.UID, user.Email)
	if err != nil {
		return nil, err
	}

	clientID, err := p.clientID(ctx)
	if err != nil {
		return nil, err
	}

	// new session token against session fixation, the data is kept
	if err := p.Sessions.RenewToken(ctx); err != nil {
		return nil, err
	}
	p.Sessions.Put(ctx, tokenKey, token)

	session := &Session{
		PrincipalID: user.UID,
		Email:       user.Email,
		IDToken:     token,
		ExpiresAt:   expiresAt,
	}

	p.Log.Info(ctx, "signed in", "principal", user.UID)
	p.Hub.Publish(clientID, session)
	return session, nil
}

func (p *SessionProvider) SignOut(ctx context.Context) error {

	clientID := p.Sessions.GetString(ctx, clientKey)

	p.Sessions.Remove(ctx, tokenKey)
	if err := p.Sessions.RenewToken(ctx); err != nil {
		return err
	}

	p.Log.Info(ctx, "signed out")
	if clientID != "" {
		p.Hub.Publish(clientID, nil)
	}
	return nil
}

// Subscribe does not create a client id. Clients without one have never signed in, so they get the current state only.
func (p *SessionProvider) Subscribe(ctx context.Context, onChange func(*Session)) (func(), error) {

	clientID := p.Sessions.GetString(ctx, clientKey)
	if clientID == "" {
		current, err := p.Current(ctx)
		if err != nil {
			return nil, err
		}
		onChange(current)
		return func() {}, nil
	}

	// Changes published before the current state is delivered are held back. The latest one replaces the current state.
	var mu sync.Mutex
	var started, hasPending bool
	var pending *Session

	unsubscribe := p.Hub.Subscribe(clientID, func(session *Session) {
		mu.Lock()
		defer mu.Unlock()
		if !started {
			pending, hasPending = session, true
			return
		}
		onChange(session)
	})

	current, err := p.Current(ctx)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	mu.Lock()
	defer mu.Unlock()
	started = true
	if hasPending {
		current = pending
	}
	onChange(current)
	return unsubscribe, nil
}

func (p *SessionProvider) clientID(ctx context.Context) (string, error) {
	if id := p.Sessions.GetString(ctx, clientKey); id != "" {
		return id, nil
	}
	id, err := util.RandomString32()
	if err != nil {
		return "", err
	}
	p.Sessions.Put(ctx, clientKey, id)
	return id, nil
}

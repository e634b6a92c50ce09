// Package session turns identity provider results into session states and
// the redirects of the dashboard pages.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/ds124wfegd/trainhub/internal/identity"
	"github.com/sirupsen/logrus"
)

type Provider interface {
	CreateUser(ctx context.Context, email, password string) (*identity.Session, error)
	SignIn(ctx context.Context, email, password string) (*identity.Session, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*entity.User, error)
	Reload(ctx context.Context, token string) (*entity.User, error)
	SendEmailVerification(ctx context.Context, token string) error
	SendPasswordReset(ctx context.Context, email string) error
}

// VerificationRelay sends the additional custom verification email.
type VerificationRelay interface {
	SendVerification(ctx context.Context, email, link string) error
}

// Snapshot is the resolved state of one session.
type Snapshot struct {
	State State        `json:"state"`
	User  *entity.User `json:"user,omitempty"`
}

// Result of an auth operation. Session is set when a new token was issued.
type Result struct {
	Snapshot
	Session  *identity.Session `json:"-"`
	Redirect string            `json:"redirect,omitempty"`
}

type Controller struct {
	provider Provider
	relay    VerificationRelay
	baseURL  string

	mu        sync.RWMutex
	nextID    int
	listeners map[int]func(Snapshot)
}

func NewController(provider Provider, relay VerificationRelay, baseURL string) *Controller {
	return &Controller{
		provider:  provider,
		relay:     relay,
		baseURL:   strings.TrimRight(baseURL, "/"),
		listeners: make(map[int]func(Snapshot)),
	}
}

func snapshotOf(user *entity.User) Snapshot {
	switch {
	case user == nil:
		return Snapshot{State: StateAnonymous}
	case user.EmailVerified:
		return Snapshot{State: StateVerified, User: user}
	default:
		return Snapshot{State: StateUnverified, User: user}
	}
}

// Subscribe registers fn for every resolved session change. The returned
// function removes it.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) emit(s Snapshot) {
	c.mu.RLock()
	listeners := make([]func(Snapshot), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.mu.RUnlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// Resolve maps a session token to its state. Provider failures other than an
// invalid session leave the state unknown.
func (c *Controller) Resolve(ctx context.Context, token string) (Snapshot, error) {
	if c.provider == nil {
		return Snapshot{State: StateUnknown}, entity.ErrAuthNotInitialized
	}

	user, err := c.provider.CurrentUser(ctx, token)
	if errors.Is(err, entity.ErrNotAuthenticated) {
		s := snapshotOf(nil)
		c.emit(s)
		return s, nil
	}
	if err != nil {
		return Snapshot{State: StateUnknown}, err
	}

	s := snapshotOf(user)
	c.emit(s)
	return s, nil
}

// Register creates the account, sends the provider verification email and a
// custom one through the relay. A relay failure is logged only.
func (c *Controller) Register(ctx context.Context, email, password string) (*Result, error) {
	if c.provider == nil {
		return nil, entity.ErrAuthNotInitialized
	}

	sess, err := c.provider.CreateUser(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := c.provider.SendEmailVerification(ctx, sess.Token); err != nil {
		return nil, fmt.Errorf("send verification email: %w", err)
	}
	c.sendCustomVerification(ctx, sess.User.Email)

	s := snapshotOf(sess.User)
	c.emit(s)
	return &Result{Snapshot: s, Session: sess, Redirect: PathVerifyEmail}, nil
}

// Login signs in. An unverified account is signed out again right away and
// the call fails with auth/email-not-verified.
func (c *Controller) Login(ctx context.Context, email, password string) (*Result, error) {
	if c.provider == nil {
		return nil, entity.ErrAuthNotInitialized
	}

	sess, err := c.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if !sess.User.EmailVerified {
		if err := c.provider.SignOut(ctx, sess.Token); err != nil {
			logrus.Errorf("failed to sign out unverified user: %v", err)
		}
		c.emit(snapshotOf(nil))
		return nil, entity.NewAuthError(entity.AuthCodeEmailNotVerified, "Email address is not verified.")
	}

	s := snapshotOf(sess.User)
	c.emit(s)
	return &Result{Snapshot: s, Session: sess, Redirect: PathHome}, nil
}

func (c *Controller) Logout(ctx context.Context, token string) (*Result, error) {
	if c.provider == nil {
		return nil, entity.ErrAuthNotInitialized
	}
	if err := c.provider.SignOut(ctx, token); err != nil {
		return nil, err
	}

	s := snapshotOf(nil)
	c.emit(s)
	return &Result{Snapshot: s, Redirect: PathLogin}, nil
}

func (c *Controller) ResetPassword(ctx context.Context, email string) error {
	if c.provider == nil {
		return entity.ErrAuthNotInitialized
	}
	return c.provider.SendPasswordReset(ctx, email)
}

// SendVerificationEmail re-sends both verification emails to the signed-in user.
func (c *Controller) SendVerificationEmail(ctx context.Context, token string) error {
	if c.provider == nil {
		return entity.ErrAuthNotInitialized
	}

	user, err := c.provider.CurrentUser(ctx, token)
	if err != nil {
		return err
	}
	if err := c.provider.SendEmailVerification(ctx, token); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	c.sendCustomVerification(ctx, user.Email)
	return nil
}

// Reload re-reads the user so a finished verification becomes visible.
func (c *Controller) Reload(ctx context.Context, token string) (*Result, error) {
	if c.provider == nil {
		return nil, entity.ErrAuthNotInitialized
	}

	user, err := c.provider.Reload(ctx, token)
	if err != nil {
		return nil, err
	}

	s := snapshotOf(user)
	c.emit(s)
	result := &Result{Snapshot: s}
	if s.State == StateVerified {
		result.Redirect = PathHome
	}
	return result, nil
}

func (c *Controller) sendCustomVerification(ctx context.Context, email string) {
	if c.relay == nil {
		return
	}
	link := c.baseURL + PathVerifyEmail + "?email=" + url.QueryEscape(email)
	if err := c.relay.SendVerification(ctx, email, link); err != nil {
		logrus.WithField("email", email).Warnf("custom verification email failed: %v", err)
	}
}

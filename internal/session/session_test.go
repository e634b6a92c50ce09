package session

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/ds124wfegd/trainhub/internal/identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	users       map[string]*entity.User // token -> user
	signInErr   error
	signInUser  *entity.User
	signedOut   []string
	verifySent  int
	resetSentTo string
	currentErr  error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{users: make(map[string]*entity.User)}
}

func (p *fakeProvider) CreateUser(_ context.Context, email, password string) (*identity.Session, error) {
	if len(password) < 6 {
		return nil, entity.NewAuthError(entity.AuthCodeWeakPassword, "weak")
	}
	user := &entity.User{UID: "u-" + email, Email: email}
	p.users["token-"+email] = user
	return &identity.Session{Token: "token-" + email, User: user}, nil
}

func (p *fakeProvider) SignIn(_ context.Context, email, _ string) (*identity.Session, error) {
	if p.signInErr != nil {
		return nil, p.signInErr
	}
	p.users["token-"+email] = p.signInUser
	return &identity.Session{Token: "token-" + email, User: p.signInUser}, nil
}

func (p *fakeProvider) SignOut(_ context.Context, token string) error {
	p.signedOut = append(p.signedOut, token)
	delete(p.users, token)
	return nil
}

func (p *fakeProvider) CurrentUser(_ context.Context, token string) (*entity.User, error) {
	if p.currentErr != nil {
		return nil, p.currentErr
	}
	user, ok := p.users[token]
	if !ok {
		return nil, entity.ErrNotAuthenticated
	}
	return user, nil
}

func (p *fakeProvider) Reload(ctx context.Context, token string) (*entity.User, error) {
	return p.CurrentUser(ctx, token)
}

func (p *fakeProvider) SendEmailVerification(ctx context.Context, token string) error {
	if _, err := p.CurrentUser(ctx, token); err != nil {
		return err
	}
	p.verifySent++
	return nil
}

func (p *fakeProvider) SendPasswordReset(_ context.Context, email string) error {
	p.resetSentTo = email
	return nil
}

type fakeRelay struct {
	links []string
	err   error
}

func (r *fakeRelay) SendVerification(_ context.Context, _, link string) error {
	r.links = append(r.links, link)
	return r.err
}

// TestGuard проверяет политику перенаправлений
func TestGuard(t *testing.T) {
	tests := []struct {
		name     string
		state    State
		path     string
		expected string
	}{
		{name: "anonymous on dashboard", state: StateAnonymous, path: "/", expected: PathLogin},
		{name: "anonymous on events", state: StateAnonymous, path: "/events", expected: PathLogin},
		{name: "anonymous on login", state: StateAnonymous, path: "/auth/login"},
		{name: "anonymous on register", state: StateAnonymous, path: "/auth/register"},
		{name: "verified on login", state: StateVerified, path: "/auth/login", expected: PathHome},
		{name: "verified on verify-email", state: StateVerified, path: "/auth/verify-email", expected: PathHome},
		{name: "verified on dashboard", state: StateVerified, path: "/trainers"},
		{name: "unverified on login", state: StateUnverified, path: "/auth/login", expected: PathVerifyEmail},
		{name: "unverified on verify-email", state: StateUnverified, path: "/auth/verify-email"},
		{name: "unverified on dashboard", state: StateUnverified, path: "/"},
		{name: "unknown never redirects", state: StateUnknown, path: "/"},
		{name: "unknown on auth page", state: StateUnknown, path: "/auth/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Guard(tt.state, tt.path))
		})
	}
}

func TestRegister(t *testing.T) {
	provider := newFakeProvider()
	relay := &fakeRelay{err: errors.New("relay down")}
	c := NewController(provider, relay, "http://localhost:8080/")

	var seen []State
	unsubscribe := c.Subscribe(func(s Snapshot) { seen = append(seen, s.State) })
	defer unsubscribe()

	result, err := c.Register(context.Background(), "ann@example.com", "secret1")
	require.NoError(t, err, "relay failure must not fail registration")

	assert.Equal(t, StateUnverified, result.State)
	assert.Equal(t, PathVerifyEmail, result.Redirect)
	assert.NotNil(t, result.Session)
	assert.Equal(t, 1, provider.verifySent)
	assert.Equal(t, []string{"http://localhost:8080/auth/verify-email?email=ann%40example.com"}, relay.links)
	assert.Equal(t, []State{StateUnverified}, seen)
}

func TestRegisterError(t *testing.T) {
	c := NewController(newFakeProvider(), nil, "http://localhost")

	_, err := c.Register(context.Background(), "ann@example.com", "123")
	assert.Equal(t, entity.AuthCodeWeakPassword, entity.AuthCode(err))
}

func TestLogin(t *testing.T) {
	t.Run("verified", func(t *testing.T) {
		provider := newFakeProvider()
		provider.signInUser = &entity.User{UID: "u1", Email: "ann@example.com", EmailVerified: true}
		c := NewController(provider, nil, "")

		result, err := c.Login(context.Background(), "ann@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, StateVerified, result.State)
		assert.Equal(t, PathHome, result.Redirect)
		assert.Empty(t, provider.signedOut)
	})

	t.Run("unverified is signed out", func(t *testing.T) {
		provider := newFakeProvider()
		provider.signInUser = &entity.User{UID: "u1", Email: "ann@example.com"}
		c := NewController(provider, nil, "")

		var last Snapshot
		c.Subscribe(func(s Snapshot) { last = s })

		result, err := c.Login(context.Background(), "ann@example.com", "secret1")
		assert.Nil(t, result)
		assert.Equal(t, entity.AuthCodeEmailNotVerified, entity.AuthCode(err))
		assert.Equal(t, []string{"token-ann@example.com"}, provider.signedOut)
		assert.Equal(t, StateAnonymous, last.State)

		snapshot, err := c.Resolve(context.Background(), "token-ann@example.com")
		require.NoError(t, err)
		assert.Equal(t, StateAnonymous, snapshot.State)
	})

	t.Run("provider error", func(t *testing.T) {
		provider := newFakeProvider()
		provider.signInErr = entity.NewAuthError(entity.AuthCodeInvalidCredential, "bad")
		c := NewController(provider, nil, "")

		_, err := c.Login(context.Background(), "ann@example.com", "x")
		assert.Equal(t, entity.AuthCodeInvalidCredential, entity.AuthCode(err))
	})
}

func TestLogoutAndResolve(t *testing.T) {
	provider := newFakeProvider()
	c := NewController(provider, nil, "")
	ctx := context.Background()

	registered, err := c.Register(ctx, "bob@example.com", "secret1")
	require.NoError(t, err)
	token := registered.Session.Token

	snapshot, err := c.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, StateUnverified, snapshot.State)
	assert.Equal(t, "bob@example.com", snapshot.User.Email)

	result, err := c.Logout(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, PathLogin, result.Redirect)
	assert.Equal(t, StateAnonymous, result.State)

	snapshot, err = c.Resolve(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, StateAnonymous, snapshot.State)
}

func TestResolveProviderFailure(t *testing.T) {
	provider := newFakeProvider()
	provider.currentErr = errors.New("redis: connection refused")
	c := NewController(provider, nil, "")

	snapshot, err := c.Resolve(context.Background(), "any")
	assert.Error(t, err)
	assert.Equal(t, StateUnknown, snapshot.State)
}

func TestReload(t *testing.T) {
	provider := newFakeProvider()
	c := NewController(provider, nil, "")
	ctx := context.Background()

	registered, err := c.Register(ctx, "kim@example.com", "secret1")
	require.NoError(t, err)
	token := registered.Session.Token

	result, err := c.Reload(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, StateUnverified, result.State)
	assert.Empty(t, result.Redirect)

	provider.users[token].EmailVerified = true
	result, err = c.Reload(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, StateVerified, result.State)
	assert.Equal(t, PathHome, result.Redirect)
}

func TestSendVerificationEmailAndReset(t *testing.T) {
	provider := newFakeProvider()
	relay := &fakeRelay{}
	c := NewController(provider, relay, "https://trainhub.example.com")
	ctx := context.Background()

	registered, err := c.Register(ctx, "lee@example.com", "secret1")
	require.NoError(t, err)

	require.NoError(t, c.SendVerificationEmail(ctx, registered.Session.Token))
	assert.Equal(t, 2, provider.verifySent)
	assert.Len(t, relay.links, 2)

	err = c.SendVerificationEmail(ctx, "unknown-token")
	assert.ErrorIs(t, err, entity.ErrNotAuthenticated)

	require.NoError(t, c.ResetPassword(ctx, "lee@example.com"))
	assert.Equal(t, "lee@example.com", provider.resetSentTo)
}

func TestControllerWithoutProvider(t *testing.T) {
	c := NewController(nil, nil, "")
	ctx := context.Background()

	_, err := c.Register(ctx, "a@b.c", "secret1")
	assert.ErrorIs(t, err, entity.ErrAuthNotInitialized)
	_, err = c.Login(ctx, "a@b.c", "secret1")
	assert.ErrorIs(t, err, entity.ErrAuthNotInitialized)
	_, err = c.Logout(ctx, "t")
	assert.ErrorIs(t, err, entity.ErrAuthNotInitialized)
	assert.ErrorIs(t, c.ResetPassword(ctx, "a@b.c"), entity.ErrAuthNotInitialized)
	assert.ErrorIs(t, c.SendVerificationEmail(ctx, "t"), entity.ErrAuthNotInitialized)

	snapshot, err := c.Resolve(ctx, "t")
	assert.ErrorIs(t, err, entity.ErrAuthNotInitialized)
	assert.Equal(t, StateUnknown, snapshot.State)
}

func TestMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "nil", err: nil, expected: ""},
		{name: "mapped code", err: entity.NewAuthError(entity.AuthCodeInvalidCredential, "raw"), expected: "Invalid email or password. Please try again."},
		{name: "wrapped code", err: fmt.Errorf("login: %w", entity.NewAuthError(entity.AuthCodeEmailNotVerified, "raw")), expected: "Please verify your email before logging in."},
		{name: "unmapped code", err: entity.NewAuthError("auth/user-disabled", "The user account has been disabled."), expected: "The user account has been disabled."},
		{name: "plain error", err: errors.New("network down"), expected: "network down"},
		{name: "not initialized", err: entity.ErrAuthNotInitialized, expected: "Authentication is not initialized. Please check your configuration."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Message(tt.err))
		})
	}
}

// Package identity is the email/password identity provider: accounts,
// sessions, verification and password reset.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	repository "github.com/ds124wfegd/trainhub/internal/database/postgres"
	"github.com/ds124wfegd/trainhub/internal/entity"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Mailer delivers the provider's own emails.
type Mailer interface {
	SendVerification(ctx context.Context, email, link string) error
	SendPasswordReset(ctx context.Context, email, link string) error
}

type Config struct {
	Secret            []byte
	BaseURL           string
	SessionTTL        time.Duration
	ActionCodeTTL     time.Duration
	MaxFailedLogins   int
	FailedLoginWindow time.Duration
	BcryptCost        int
}

// Session is an issued sign-in.
type Session struct {
	Token     string       `json:"token"`
	User      *entity.User `json:"user"`
	ExpiresAt time.Time    `json:"expiresAt"`
}

type Provider struct {
	accounts repository.AccountRepository
	tokens   TokenStore
	mailer   Mailer
	cfg      Config
	validate *validator.Validate
	now      func() time.Time
}

func NewProvider(accounts repository.AccountRepository, tokens TokenStore, mailer Mailer, cfg Config) *Provider {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &Provider{
		accounts: accounts,
		tokens:   tokens,
		mailer:   mailer,
		cfg:      cfg,
		validate: validator.New(),
		now:      time.Now,
	}
}

func (p *Provider) normalize(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := p.validate.Var(email, "required,email"); err != nil {
		return "", entity.NewAuthError(entity.AuthCodeInvalidEmail, "The email address is badly formatted.")
	}
	return email, nil
}

func checkPassword(password string) error {
	if len(password) < minPasswordLength {
		return entity.NewAuthError(entity.AuthCodeWeakPassword, "Password should be at least 6 characters.")
	}
	return nil
}

// CreateUser registers an account and signs it in.
func (p *Provider) CreateUser(ctx context.Context, email, password string) (*Session, error) {
	email, err := p.normalize(email)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	account := &entity.Account{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := p.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, entity.ErrUserAlreadyExists) {
			return nil, entity.NewAuthError(entity.AuthCodeEmailInUse, "The email address is already in use by another account.")
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	logrus.WithField("uid", account.UID).Info("account created")
	return p.issueSession(ctx, account)
}

// SignIn checks the credentials. Every attempt is counted before the check
// and a successful one clears the counter, so unknown emails and wrong
// passwords both use up the limit.
func (p *Provider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email, err := p.normalize(email)
	if err != nil {
		return nil, err
	}

	if p.cfg.MaxFailedLogins > 0 {
		attempts, err := p.tokens.RegisterAttempt(ctx, email, p.cfg.FailedLoginWindow)
		if err != nil {
			return nil, err
		}
		if attempts > int64(p.cfg.MaxFailedLogins) {
			return nil, entity.NewAuthError(entity.AuthCodeTooManyRequests,
				"Access to this account has been temporarily disabled due to many failed login attempts.")
		}
	}

	account, err := p.accounts.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, entity.ErrUserNotFound) {
		return nil, fmt.Errorf("load account: %w", err)
	}
	if account == nil || bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, entity.NewAuthError(entity.AuthCodeInvalidCredential, "The supplied auth credential is incorrect.")
	}

	if err := p.tokens.ResetFailures(ctx, email); err != nil {
		logrus.Warnf("failed to reset sign-in failures: %v", err)
	}
	return p.issueSession(ctx, account)
}

func (p *Provider) issueSession(ctx context.Context, account *entity.Account) (*Session, error) {
	sessionID := uuid.NewString()
	issuedAt := p.now()

	token, err := issueToken(p.cfg.Secret, account.UID, sessionID, issuedAt, p.cfg.SessionTTL)
	if err != nil {
		return nil, err
	}
	if err := p.tokens.SaveSession(ctx, sessionID, account.UID, p.cfg.SessionTTL); err != nil {
		return nil, err
	}

	return &Session{
		Token:     token,
		User:      account.User(),
		ExpiresAt: issuedAt.Add(p.cfg.SessionTTL),
	}, nil
}

// SignOut ends the session behind token. Unknown or invalid tokens are ignored.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	claims, err := parseToken(p.cfg.Secret, token, p.now)
	if err != nil {
		return nil
	}
	return p.tokens.DeleteSession(ctx, claims.ID)
}

// CurrentUser resolves a session token to the user it belongs to.
func (p *Provider) CurrentUser(ctx context.Context, token string) (*entity.User, error) {
	account, err := p.currentAccount(ctx, token)
	if err != nil {
		return nil, err
	}
	return account.User(), nil
}

// Reload re-reads the signed-in user from the account store.
func (p *Provider) Reload(ctx context.Context, token string) (*entity.User, error) {
	return p.CurrentUser(ctx, token)
}

func (p *Provider) currentAccount(ctx context.Context, token string) (*entity.Account, error) {
	if token == "" {
		return nil, entity.ErrNotAuthenticated
	}

	claims, err := parseToken(p.cfg.Secret, token, p.now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrNotAuthenticated, err)
	}

	uid, err := p.tokens.SessionUID(ctx, claims.ID)
	if errors.Is(err, ErrTokenNotFound) || (err == nil && uid != claims.Subject) {
		return nil, entity.ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}

	account, err := p.accounts.GetByID(ctx, uid)
	if errors.Is(err, entity.ErrUserNotFound) {
		return nil, entity.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return account, nil
}

// SendEmailVerification mails a verification link to the signed-in user.
func (p *Provider) SendEmailVerification(ctx context.Context, token string) error {
	account, err := p.currentAccount(ctx, token)
	if err != nil {
		return err
	}

	link, err := p.newActionLink(ctx, ActionCode{Mode: ModeVerifyEmail, UID: account.UID, Email: account.Email})
	if err != nil {
		return err
	}
	if err := p.mailer.SendVerification(ctx, account.Email, link); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func (p *Provider) SendPasswordReset(ctx context.Context, email string) error {
	email, err := p.normalize(email)
	if err != nil {
		return err
	}

	account, err := p.accounts.GetByEmail(ctx, email)
	if errors.Is(err, entity.ErrUserNotFound) {
		return entity.NewAuthError(entity.AuthCodeUserNotFound, "There is no user record corresponding to this identifier.")
	}
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}

	link, err := p.newActionLink(ctx, ActionCode{Mode: ModeResetPassword, UID: account.UID, Email: account.Email})
	if err != nil {
		return err
	}
	if err := p.mailer.SendPasswordReset(ctx, account.Email, link); err != nil {
		return fmt.Errorf("send password reset email: %w", err)
	}
	return nil
}

// ApplyActionCode consumes a verifyEmail code and marks the email verified.
func (p *Provider) ApplyActionCode(ctx context.Context, code string) (*ActionCode, error) {
	action, err := p.takeActionCode(ctx, ModeVerifyEmail, code)
	if err != nil {
		return nil, err
	}

	if err := p.accounts.SetEmailVerified(ctx, action.UID, true); err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, entity.NewAuthError(entity.AuthCodeUserNotFound, "There is no user record corresponding to this identifier.")
		}
		return nil, fmt.Errorf("verify email: %w", err)
	}

	logrus.WithField("uid", action.UID).Info("email verified")
	return action, nil
}

// ConfirmPasswordReset consumes a resetPassword code, sets a new password and
// signs the user out everywhere.
func (p *Provider) ConfirmPasswordReset(ctx context.Context, code, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	action, err := p.takeActionCode(ctx, ModeResetPassword, code)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), p.cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := p.accounts.UpdatePassword(ctx, action.UID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := p.tokens.DeleteUserSessions(ctx, action.UID); err != nil {
		return fmt.Errorf("revoke sessions: %w", err)
	}
	return p.tokens.ResetFailures(ctx, action.Email)
}

func (p *Provider) takeActionCode(ctx context.Context, mode, code string) (*ActionCode, error) {
	if code == "" {
		return nil, entity.NewAuthError(entity.AuthCodeInvalidActionCode, "The action code is invalid.")
	}

	action, err := p.tokens.TakeActionCode(ctx, mode, code)
	if errors.Is(err, ErrTokenNotFound) {
		return nil, entity.NewAuthError(entity.AuthCodeInvalidActionCode,
			"The action code is invalid. This can happen if the code is malformed, expired, or has already been used.")
	}
	if err != nil {
		return nil, err
	}
	return action, nil
}

func (p *Provider) newActionLink(ctx context.Context, action ActionCode) (string, error) {
	code := uuid.NewString()
	if err := p.tokens.SaveActionCode(ctx, code, action, p.cfg.ActionCodeTTL); err != nil {
		return "", err
	}
	return ActionLink(p.cfg.BaseURL, action.Mode, code, action.Email), nil
}

// ActionLink builds the URL of the provider's action route.
func ActionLink(baseURL, mode, code, email string) string {
	query := url.Values{}
	query.Set("mode", mode)
	query.Set("oobCode", code)
	query.Set("email", email)
	return strings.TrimRight(baseURL, "/") + "/__/auth/action?" + query.Encode()
}

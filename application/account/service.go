/*
Package account Application Layer - registration, login and email verification.

Passwords are hashed through the PasswordHasher port and sessions are
opened in the same store the API authenticates against, so a token
returned by Login is immediately usable as a bearer token or cookie.
*/
package account

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/domain/account"
	"storefront/domain/shared"
	"storefront/pkg/logger"

	"go.uber.org/zap"
)

const (
	DefaultSessionTTL = 2 * time.Hour

	verificationSubject = "Please verify your email address"
	// dummyPassword hashed once so unknown emails cost as much as wrong passwords
	dummyPassword = "storefront-login-placeholder"
)

// Options sessions, links and sign-up policy
type Options struct {
	SessionTTL time.Duration
	// BaseURL public API root; links are BaseURL + /users/verify-email/:token
	BaseURL string
	// RequireEmailVerification new user accounts start unverified and get a link
	RequireEmailVerification bool
	// AdminSignupKey lets a caller without an admin session create an admin;
	// empty means only admins can create admins
	AdminSignupKey string
	// LoginFloor minimum time a login attempt takes
	LoginFloor time.Duration
}

// ApplicationService account application service
type ApplicationService struct {
	accounts account.Repository
	hasher   PasswordHasher
	sessions SessionStore
	mailer   Mailer
	opts     Options
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error

	dummyOnce sync.Once
	dummyHash string
}

func NewApplicationService(accounts account.Repository, hasher PasswordHasher, sessions SessionStore, mailer Mailer, opts Options) *ApplicationService {
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &ApplicationService{
		accounts: accounts,
		hasher:   hasher,
		sessions: sessions,
		mailer:   mailer,
		opts:     opts,
		now:      time.Now,
		sleep:    sleepContext,
	}
}

// Register creates a shopper account. With verification required the
// account starts unverified and a link is mailed; sessions for it are
// refused until the link is opened.
func (s *ApplicationService) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	a, err := s.create(ctx, account.RoleUser, req)
	if err != nil {
		return nil, err
	}

	var token string
	if s.opts.RequireEmailVerification {
		if token, err = a.IssueVerification(s.now()); err != nil {
			return nil, err
		}
	} else {
		a.MarkVerified(s.now())
	}
	if err := s.accounts.Save(ctx, a); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("account registered",
		zap.String("account_id", a.ID()), zap.String("role", string(a.Role())))

	if token != "" {
		// the account stands even when the mail does not go out; the link can be resent
		if err := s.sendVerification(ctx, a.Email(), token); err != nil {
			logger.FromContext(ctx).Warn("verification email not sent",
				append(logger.ErrorFields(err), zap.String("account_id", a.ID()))...)
		}
	}
	return &RegisterResponse{Account: toAccountResponse(a), VerificationRequired: token != ""}, nil
}

// RegisterAdmin creates an administrator. The caller must hold an admin
// session or present the configured signup key.
func (s *ApplicationService) RegisterAdmin(ctx context.Context, caller shared.Identity, signupKey string, req RegisterRequest) (*RegisterResponse, error) {
	if !caller.IsAdmin() && !s.signupKeyMatches(signupKey) {
		return nil, shared.NewForbiddenError("account", "Admin registration requires an admin session or a valid signup key")
	}

	a, err := s.create(ctx, account.RoleAdmin, req)
	if err != nil {
		return nil, err
	}
	a.MarkVerified(s.now())
	if err := s.accounts.Save(ctx, a); err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info("admin registered",
		zap.String("account_id", a.ID()), zap.String("created_by", caller.ID))
	return &RegisterResponse{Account: toAccountResponse(a)}, nil
}

func (s *ApplicationService) signupKeyMatches(key string) bool {
	if s.opts.AdminSignupKey == "" || key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(key), []byte(s.opts.AdminSignupKey)) == 1
}

func (s *ApplicationService) create(ctx context.Context, role account.Role, req RegisterRequest) (*account.Account, error) {
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, shared.NewValidationError("account", "", "Username, email, and password are required")
	}
	email, err := account.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if err := account.ValidatePassword(req.Password); err != nil {
		return nil, err
	}

	existing, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if existing, err = s.accounts.FindByUsername(ctx, strings.TrimSpace(req.Username)); err != nil {
			return nil, err
		}
	}
	if existing != nil {
		return nil, account.NewDuplicateAccountError(role)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	return account.NewAccount(account.NewAccountOptions{
		ID:           s.accounts.NextIdentity(),
		Username:     req.Username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	})
}

// Login checks the credentials and opens a session for an account of the
// given role. Unknown email, wrong role and wrong password all answer the
// same way and take at least LoginFloor.
func (s *ApplicationService) Login(ctx context.Context, role account.Role, req LoginRequest) (*LoginResponse, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, shared.NewValidationError("account", "", "Email and password are required")
	}
	email, err := account.NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}

	start := s.now()
	a, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	var ok bool
	if a == nil || a.Role() != role {
		s.hasher.Matches(s.placeholderHash(), req.Password)
	} else {
		ok = s.hasher.Matches(a.PasswordHash(), req.Password)
	}
	if err := s.waitFloor(ctx, start); err != nil {
		return nil, err
	}
	if !ok {
		logger.FromContext(ctx).Info("login rejected", zap.String("role", string(role)))
		return nil, account.NewInvalidCredentialsError()
	}

	token, err := s.sessions.Open(ctx, Grant{
		AccountID:     a.ID(),
		Email:         a.Email(),
		Name:          a.Username(),
		Role:          a.Role(),
		EmailVerified: a.EmailVerified(),
	}, s.opts.SessionTTL)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}

	return &LoginResponse{
		Account:   toAccountResponse(a),
		Token:     token,
		ExpiresAt: s.now().Add(s.opts.SessionTTL),
	}, nil
}

// Logout closes the session; an empty token is a no-op
func (s *ApplicationService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.Close(ctx, token); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	return nil
}

// VerifyEmail consumes a verification token
func (s *ApplicationService) VerifyEmail(ctx context.Context, token string) error {
	a, err := s.accounts.FindByVerificationToken(ctx, token)
	if err != nil {
		return err
	}
	if a == nil {
		return account.NewInvalidTokenError()
	}
	if err := a.VerifyEmail(token, s.now()); err != nil {
		return err
	}
	return s.accounts.Save(ctx, a)
}

// ResendVerification mails a fresh link to an unverified account. Unknown
// and already verified addresses succeed silently.
func (s *ApplicationService) ResendVerification(ctx context.Context, req ResendVerificationRequest) error {
	email, err := account.NormalizeEmail(req.Email)
	if err != nil {
		return err
	}
	a, err := s.accounts.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if a == nil || a.EmailVerified() {
		return nil
	}

	token, err := a.IssueVerification(s.now())
	if err != nil {
		return err
	}
	if err := s.accounts.Save(ctx, a); err != nil {
		return err
	}
	return s.sendVerification(ctx, a.Email(), token)
}

// VerifyURL public verification link for a token
func (s *ApplicationService) VerifyURL(token string) string {
	return s.opts.BaseURL + "/users/verify-email/" + token
}

// SessionTTL lifetime of sessions opened by Login
func (s *ApplicationService) SessionTTL() time.Duration {
	return s.opts.SessionTTL
}

func (s *ApplicationService) sendVerification(ctx context.Context, email, token string) error {
	if s.mailer == nil {
		return fmt.Errorf("no mailer configured")
	}
	link := s.VerifyURL(token)
	html := fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Verify your email address</h2>
  <p>Open the link below within 24 hours to activate your account:</p>
  <p><a href="%[1]s">%[1]s</a></p>
  <p>If you didn't create an account, please ignore this email.</p>
</div>`, link)

	if err := s.mailer.Send(ctx, Message{To: email, Subject: verificationSubject, HTML: html}); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}
	return nil
}

func (s *ApplicationService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.Hash(dummyPassword)
		if err != nil {
			logger.Get().Warn("could not hash login placeholder", zap.Error(err))
			return
		}
		s.dummyHash = hash
	})
	return s.dummyHash
}

func (s *ApplicationService) waitFloor(ctx context.Context, start time.Time) error {
	if s.opts.LoginFloor <= 0 {
		return nil
	}
	if remaining := s.opts.LoginFloor - s.now().Sub(start); remaining > 0 {
		return s.sleep(ctx, remaining)
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package account

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"storefront/domain/account"
	"storefront/domain/shared"
	"storefront/infrastructure/persistence/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainHasher reversible stand-in for bcrypt
type plainHasher struct{ hashed int }

func (h *plainHasher) Hash(password string) (string, error) {
	h.hashed++
	return "hashed:" + password, nil
}

func (h *plainHasher) Matches(hash, password string) bool {
	return hash == "hashed:"+password
}

type fakeSessions struct {
	mu     sync.Mutex
	open   map[string]Grant
	ttl    time.Duration
	serial int
}

func (f *fakeSessions) Open(ctx context.Context, grant Grant, ttl time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.serial++
	token := fmt.Sprintf("token-%s-%d", grant.AccountID, f.serial)
	f.open[token] = grant
	f.ttl = ttl
	return token, nil
}

func (f *fakeSessions) Close(ctx context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.open, token)
	return nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []Message
	err  error
}

func (m *fakeMailer) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	svc      *ApplicationService
	repo     *memory.AccountRepository
	hasher   *plainHasher
	sessions *fakeSessions
	mailer   *fakeMailer
}

func setup(t *testing.T, opts Options) *fixture {
	t.Helper()
	f := &fixture{
		repo:     memory.NewAccountRepository(),
		hasher:   &plainHasher{},
		sessions: &fakeSessions{open: map[string]Grant{}},
		mailer:   &fakeMailer{},
	}
	if opts.BaseURL == "" {
		opts.BaseURL = "https://shop.test/api/v1/"
	}
	f.svc = NewApplicationService(f.repo, f.hasher, f.sessions, f.mailer, opts)
	return f
}

func ada() RegisterRequest {
	return RegisterRequest{Username: "ada", Email: "Ada@Example.com", Password: "correct horse"}
}

func TestRegisterWithVerification(t *testing.T) {
	f := setup(t, Options{RequireEmailVerification: true})
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, ada())
	require.NoError(t, err)
	assert.True(t, resp.VerificationRequired)
	assert.Equal(t, "ada@example.com", resp.Account.Email)
	assert.Equal(t, "user", resp.Account.Role)
	assert.False(t, resp.Account.EmailVerified)

	stored, err := f.repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hashed:correct horse", stored.PasswordHash())

	require.Len(t, f.mailer.sent, 1)
	msg := f.mailer.sent[0]
	assert.Equal(t, "ada@example.com", msg.To)
	link := f.svc.VerifyURL(stored.VerificationToken())
	assert.True(t, strings.HasPrefix(link, "https://shop.test/api/v1/users/verify-email/"))
	assert.Contains(t, msg.HTML, link)

	require.NoError(t, f.svc.VerifyEmail(ctx, stored.VerificationToken()))
	stored, err = f.repo.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified())

	err = f.svc.VerifyEmail(ctx, "unknown")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestRegisterWithoutVerification(t *testing.T) {
	f := setup(t, Options{})

	resp, err := f.svc.Register(context.Background(), ada())
	require.NoError(t, err)
	assert.False(t, resp.VerificationRequired)
	assert.True(t, resp.Account.EmailVerified)
	assert.Empty(t, f.mailer.sent)
}

func TestRegisterSurvivesMailFailure(t *testing.T) {
	f := setup(t, Options{RequireEmailVerification: true})
	f.mailer.err = errors.New("smtp: 421 try later")
	ctx := context.Background()

	resp, err := f.svc.Register(ctx, ada())
	require.NoError(t, err)
	assert.True(t, resp.VerificationRequired)

	f.mailer.err = nil
	require.NoError(t, f.svc.ResendVerification(ctx, ResendVerificationRequest{Email: "ada@example.com"}))
	require.Len(t, f.mailer.sent, 1)

	// unknown addresses are not revealed
	require.NoError(t, f.svc.ResendVerification(ctx, ResendVerificationRequest{Email: "nobody@example.com"}))
	assert.Len(t, f.mailer.sent, 1)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	f := setup(t, Options{})
	ctx := context.Background()
	_, err := f.svc.Register(ctx, ada())
	require.NoError(t, err)
	hashed := f.hasher.hashed

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"same email", RegisterRequest{Username: "lovelace", Email: "ADA@example.com", Password: "correct horse"}},
		{"same username", RegisterRequest{Username: "Ada", Email: "other@example.com", Password: "correct horse"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tt.req)
			require.ErrorIs(t, err, shared.ErrConflict)
			assert.Equal(t, "User with this email or username already exists", err.Error())
		})
	}
	assert.Equal(t, hashed, f.hasher.hashed, "duplicates are rejected before hashing")
}

func TestRegisterValidation(t *testing.T) {
	f := setup(t, Options{})
	tests := []struct {
		name    string
		req     RegisterRequest
		message string
	}{
		{"missing fields", RegisterRequest{Email: "a@b.co", Password: "correct horse"}, "Username, email, and password are required"},
		{"bad email", RegisterRequest{Username: "ada", Email: "ada@", Password: "correct horse"}, "Please provide a valid email"},
		{"short password", RegisterRequest{Username: "ada", Email: "a@b.co", Password: "short"}, "Password must be at least 8 characters long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.req)
			require.ErrorIs(t, err, shared.ErrInvalidInput)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestLoginOpensSession(t *testing.T) {
	f := setup(t, Options{SessionTTL: 90 * time.Minute})
	ctx := context.Background()
	reg, err := f.svc.Register(ctx, ada())
	require.NoError(t, err)

	resp, err := f.svc.Login(ctx, account.RoleUser, LoginRequest{Email: " ADA@example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, reg.Account.ID, resp.Account.ID)

	grant := f.sessions.open[resp.Token]
	assert.Equal(t, Grant{
		AccountID:     reg.Account.ID,
		Email:         "ada@example.com",
		Name:          "ada",
		Role:          account.RoleUser,
		EmailVerified: true,
	}, grant)
	assert.Equal(t, 90*time.Minute, f.sessions.ttl)

	require.NoError(t, f.svc.Logout(ctx, resp.Token))
	assert.Empty(t, f.sessions.open)
	assert.NoError(t, f.svc.Logout(ctx, ""))
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	f := setup(t, Options{LoginFloor: 500 * time.Millisecond})
	var slept []time.Duration
	f.svc.sleep = func(ctx context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	ctx := context.Background()
	_, err := f.svc.Register(ctx, ada())
	require.NoError(t, err)

	attempts := []struct {
		name string
		role account.Role
		req  LoginRequest
	}{
		{"unknown email", account.RoleUser, LoginRequest{Email: "nobody@example.com", Password: "correct horse"}},
		{"wrong password", account.RoleUser, LoginRequest{Email: "ada@example.com", Password: "wrong horse"}},
		{"wrong role", account.RoleAdmin, LoginRequest{Email: "ada@example.com", Password: "correct horse"}},
	}
	for _, tt := range attempts {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, tt.role, tt.req)
			require.ErrorIs(t, err, shared.ErrUnauthorized)
			assert.Equal(t, "Invalid email or password", err.Error())
		})
	}
	assert.Len(t, slept, len(attempts))
	assert.Empty(t, f.sessions.open)

	_, err = f.svc.Login(ctx, account.RoleUser, LoginRequest{Email: "ada@example.com"})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestRegisterAdmin(t *testing.T) {
	f := setup(t, Options{AdminSignupKey: "s3cret"})
	ctx := context.Background()
	req := RegisterRequest{Username: "root", Email: "root@example.com", Password: "correct horse"}

	_, err := f.svc.RegisterAdmin(ctx, shared.Guest(), "", req)
	assert.ErrorIs(t, err, shared.ErrForbidden)
	_, err = f.svc.RegisterAdmin(ctx, shared.UserIdentity("u-1", "u@example.com"), "wrong", req)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	resp, err := f.svc.RegisterAdmin(ctx, shared.Guest(), "s3cret", req)
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Account.Role)
	assert.True(t, resp.Account.EmailVerified)

	second := RegisterRequest{Username: "ops", Email: "ops@example.com", Password: "correct horse"}
	_, err = f.svc.RegisterAdmin(ctx, shared.AdminIdentity(resp.Account.ID, "root@example.com"), "", second)
	require.NoError(t, err)

	_, err = f.svc.RegisterAdmin(ctx, shared.AdminIdentity(resp.Account.ID, "root@example.com"), "", req)
	require.ErrorIs(t, err, shared.ErrConflict)
	assert.Equal(t, "Admin with this email or username already exists", err.Error())

	login, err := f.svc.Login(ctx, account.RoleAdmin, LoginRequest{Email: "root@example.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, account.RoleAdmin, f.sessions.open[login.Token].Role)
}

func TestAdminSignupKeyUnsetOnlyAdminsCreateAdmins(t *testing.T) {
	f := setup(t, Options{})
	req := RegisterRequest{Username: "root", Email: "root@example.com", Password: "correct horse"}

	_, err := f.svc.RegisterAdmin(context.Background(), shared.Guest(), "", req)
	assert.ErrorIs(t, err, shared.ErrForbidden)
}

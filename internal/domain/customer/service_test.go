package customer

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain/verification"
	"storefront/internal/platform/password"
	"storefront/internal/platform/validate"
)

type memoryClienteRepo struct {
	mu       sync.Mutex
	clientes map[int64]*Cliente
	nextID   int64
}

func newMemoryClienteRepo() *memoryClienteRepo {
	return &memoryClienteRepo{clientes: make(map[int64]*Cliente), nextID: 1}
}

func (r *memoryClienteRepo) Create(ctx context.Context, c *Cliente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.clientes {
		if existing.Email == c.Email {
			return ErrEmailTaken
		}
	}
	c.ID = r.nextID
	r.nextID++
	c.CreatedAt = time.Now()
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

func (r *memoryClienteRepo) GetByID(ctx context.Context, id int64) (*Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clientes[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memoryClienteRepo) GetByEmail(ctx context.Context, email string) (*Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clientes {
		if c.Email == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryClienteRepo) GetByVerificationToken(ctx context.Context, token string) (*Cliente, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clientes {
		if c.TokenVerificacao != nil && *c.TokenVerificacao == token {
			cp := *c
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryClienteRepo) List(ctx context.Context, f ListFilter) ([]Cliente, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []Cliente
	for _, c := range r.clientes {
		if f.Verificado != nil && c.EmailVerificado != *f.Verificado {
			continue
		}
		res = append(res, *c)
	}
	return res, int64(len(res)), nil
}

func (r *memoryClienteRepo) Update(ctx context.Context, c *Cliente) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clientes[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	r.clientes[c.ID] = &cp
	return nil
}

func (r *memoryClienteRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clientes[id]; !ok {
		return ErrNotFound
	}
	delete(r.clientes, id)
	return nil
}

type captureNotifier struct {
	confirmations map[string]string
	resets        map[string]string
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{confirmations: map[string]string{}, resets: map[string]string{}}
}

func (n *captureNotifier) SendEmailConfirmation(ctx context.Context, c *Cliente, token string) error {
	n.confirmations[c.Email] = token
	return nil
}

func (n *captureNotifier) SendPasswordReset(ctx context.Context, c *Cliente, code string) error {
	n.resets[c.Email] = code
	return nil
}

func newTestService() (*Service, *memoryClienteRepo, *captureNotifier) {
	repo := newMemoryClienteRepo()
	n := newCaptureNotifier()
	svc := NewService(repo, Options{Hasher: password.NewHasher(bcrypt.MinCost), Notifier: n})
	return svc, repo, n
}

func registerAna(t *testing.T, svc *Service) *Cliente {
	t.Helper()
	c, err := svc.Register(context.Background(), RegisterInput{Nome: "Ana Silva", Email: "ana@x.com", Senha: "123456"})
	require.NoError(t, err)
	return c
}

func TestRegister(t *testing.T) {
	svc, _, n := newTestService()
	ctx := context.Background()

	c := registerAna(t, svc)
	assert.Equal(t, "Ana Silva", c.Nome)
	assert.Equal(t, "ana@x.com", c.Email)
	assert.False(t, c.EmailVerificado)
	assert.NotEqual(t, "123456", c.SenhaHash)
	assert.NotEmpty(t, n.confirmations["ana@x.com"])

	_, err := svc.Register(ctx, RegisterInput{Nome: "Ana 2", Email: "ANA@x.com", Senha: "123456"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Register(ctx, RegisterInput{Nome: "", Email: "b@x.com", Senha: "123456"})
	assert.ErrorIs(t, err, validate.ErrNameRequired)
	_, err = svc.Register(ctx, RegisterInput{Nome: "B", Email: "b@x", Senha: "123456"})
	assert.ErrorIs(t, err, validate.ErrInvalidEmail)
	_, err = svc.Register(ctx, RegisterInput{Nome: "B", Email: "b@x.com", Senha: "12345"})
	assert.ErrorIs(t, err, validate.ErrPasswordTooShort)
}

func TestRegisterAndUpdateEnforceFieldLimits(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Nome: "Ana", Email: "ana@x.com", Senha: "123456", Estado: "Sao Paulo"})
	require.ErrorIs(t, err, validate.ErrTooLong)
	assert.Equal(t, "estado", validate.FieldOf(err))

	_, err = svc.Register(ctx, RegisterInput{Nome: "Ana", Email: "ana@x.com", Senha: strings.Repeat("x", 73)})
	assert.ErrorIs(t, err, validate.ErrPasswordTooLong)

	c := registerAna(t, svc)
	cep := "01310-100-0"
	_, err = svc.Update(ctx, c.ID, UpdateInput{CEP: &cep})
	require.ErrorIs(t, err, validate.ErrTooLong)
	assert.Equal(t, "cep", validate.FieldOf(err))

	estado := " rj "
	updated, err := svc.Update(ctx, c.ID, UpdateInput{Estado: &estado})
	require.NoError(t, err)
	assert.Equal(t, "RJ", updated.Estado)
}

func TestLoginRequiresVerifiedEmail(t *testing.T) {
	svc, _, n := newTestService()
	ctx := context.Background()
	registerAna(t, svc)

	_, err := svc.Login(ctx, "ana@x.com", "123456")
	assert.ErrorIs(t, err, ErrEmailNotVerified)

	_, err = svc.ConfirmEmail(ctx, n.confirmations["ana@x.com"])
	require.NoError(t, err)

	c, err := svc.Login(ctx, "ana@x.com", "123456")
	require.NoError(t, err)
	assert.NotNil(t, c.LastLogin)

	_, err = svc.Login(ctx, "ana@x.com", "bad-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestConfirmEmailStates(t *testing.T) {
	svc, _, n := newTestService()
	ctx := context.Background()
	registerAna(t, svc)
	token := n.confirmations["ana@x.com"]

	_, err := svc.ConfirmEmail(ctx, "unknown")
	assert.ErrorIs(t, err, verification.ErrTokenInvalid)

	svc.now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	_, err = svc.ConfirmEmail(ctx, token)
	assert.ErrorIs(t, err, verification.ErrTokenExpired)

	require.NoError(t, svc.ResendConfirmation(ctx, "ana@x.com"))
	fresh := n.confirmations["ana@x.com"]
	assert.NotEqual(t, token, fresh)

	_, err = svc.ConfirmEmail(ctx, fresh)
	require.NoError(t, err)
	_, err = svc.ConfirmEmail(ctx, fresh)
	assert.ErrorIs(t, err, verification.ErrTokenInvalid)

	assert.ErrorIs(t, svc.ResendConfirmation(ctx, "ana@x.com"), ErrAlreadyVerified)
}

func TestPasswordResetIsSingleUse(t *testing.T) {
	svc, _, n := newTestService()
	ctx := context.Background()
	registerAna(t, svc)
	_, err := svc.ConfirmEmail(ctx, n.confirmations["ana@x.com"])
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "ana@x.com"))
	code := n.resets["ana@x.com"]
	require.Len(t, code, 6)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "ana@x.com", "xxxxxx", "novasenha"), ErrInvalidResetCode)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "ana@x.com", code, "123"), validate.ErrPasswordTooShort)

	require.NoError(t, svc.ResetPassword(ctx, "ana@x.com", code, "novasenha"))
	assert.ErrorIs(t, svc.ResetPassword(ctx, "ana@x.com", code, "outrasenha"), ErrInvalidResetCode)

	_, err = svc.Login(ctx, "ana@x.com", "novasenha")
	assert.NoError(t, err)
}

func TestPasswordResetExpired(t *testing.T) {
	svc, _, n := newTestService()
	ctx := context.Background()
	registerAna(t, svc)

	require.NoError(t, svc.RequestPasswordReset(ctx, "ana@x.com"))
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	err := svc.ResetPassword(ctx, "ana@x.com", n.resets["ana@x.com"], "novasenha")
	assert.ErrorIs(t, err, verification.ErrTokenExpired)
}

func TestRequestPasswordResetUnknownEmailIsSilent(t *testing.T) {
	svc, _, n := newTestService()
	assert.NoError(t, svc.RequestPasswordReset(context.Background(), "ghost@x.com"))
	assert.Empty(t, n.resets)
}

func TestUpdateEmailResetsVerification(t *testing.T) {
	svc, _, n := newTestService()
	ctx := context.Background()
	c := registerAna(t, svc)
	_, err := svc.ConfirmEmail(ctx, n.confirmations["ana@x.com"])
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Nome: "Bia", Email: "bia@x.com", Senha: "123456"})
	require.NoError(t, err)

	taken := "bia@x.com"
	_, err = svc.Update(ctx, c.ID, UpdateInput{Email: &taken})
	assert.ErrorIs(t, err, ErrEmailTaken)

	novo := "ana.silva@x.com"
	estado := "sp"
	updated, err := svc.Update(ctx, c.ID, UpdateInput{Email: &novo, Estado: &estado})
	require.NoError(t, err)
	assert.False(t, updated.EmailVerificado)
	assert.Equal(t, "SP", updated.Estado)
	assert.NotEmpty(t, n.confirmations["ana.silva@x.com"])
}

func TestLogoutRevokesEarlierTokens(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()
	c := registerAna(t, svc)

	before := time.Now().Add(-time.Second)
	require.NoError(t, svc.Logout(ctx, c.ID))
	stored, err := repo.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, stored.TokenRevoked(before))
}

func TestTokenRevokedAtMillisecondPrecision(t *testing.T) {
	logout := time.Date(2026, 3, 1, 12, 0, 0, 999_999_000, time.UTC)
	c := &Cliente{LastLogout: &logout}

	assert.False(t, c.TokenRevoked(logout.Truncate(time.Millisecond)))
	assert.True(t, c.TokenRevoked(logout.Add(-2*time.Millisecond)))
}

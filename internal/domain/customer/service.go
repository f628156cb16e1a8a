package customer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/domain/verification"
	"storefront/internal/platform/password"
	"storefront/internal/platform/validate"
)

var (
	ErrNotFound           = errors.New("cliente not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already taken")
	ErrEmailNotVerified   = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidResetCode   = errors.New("invalid or used reset code")
)

type Options struct {
	Hasher        *password.Hasher
	Notifier      Notifier
	EmailTokenTTL time.Duration
	ResetCodeTTL  time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
}

type Service struct {
	repo          Repository
	hasher        *password.Hasher
	notifier      Notifier
	emailTokenTTL time.Duration
	resetCodeTTL  time.Duration
	now           func() time.Time
	log           *slog.Logger
}

func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:          repo,
		hasher:        opts.Hasher,
		notifier:      opts.Notifier,
		emailTokenTTL: opts.EmailTokenTTL,
		resetCodeTTL:  opts.ResetCodeTTL,
		now:           opts.Now,
		log:           opts.Logger,
	}
	if s.hasher == nil {
		s.hasher = password.NewHasher(0)
	}
	if s.emailTokenTTL <= 0 {
		s.emailTokenTTL = 24 * time.Hour
	}
	if s.resetCodeTTL <= 0 {
		s.resetCodeTTL = time.Hour
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

type RegisterInput struct {
	Nome     string
	Email    string
	Senha    string
	Telefone string
	Endereco string
	Cidade   string
	Estado   string
	CEP      string
}

type UpdateInput struct {
	Nome     *string
	Email    *string
	Telefone *string
	Endereco *string
	Cidade   *string
	Estado   *string
	CEP      *string
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*Cliente, error) {
	email := validate.NormalizeEmail(in.Email)
	if err := validate.Name(in.Nome); err != nil {
		return nil, err
	}
	if err := validate.Email(email); err != nil {
		return nil, err
	}
	if err := validate.Password(in.Senha); err != nil {
		return nil, err
	}
	c := &Cliente{
		Nome:     strings.TrimSpace(in.Nome),
		Email:    email,
		Telefone: strings.TrimSpace(in.Telefone),
		Endereco: strings.TrimSpace(in.Endereco),
		Cidade:   strings.TrimSpace(in.Cidade),
		Estado:   strings.ToUpper(strings.TrimSpace(in.Estado)),
		CEP:      strings.TrimSpace(in.CEP),
	}
	if err := checkLimits(c); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Senha)
	if err != nil {
		return nil, err
	}
	c.SenhaHash = hash

	token := verification.NewToken()
	ticket := verification.Issue(token, s.now(), s.emailTokenTTL)
	c.TokenVerificacao = ticket.Token
	c.ExpiracaoVerificacao = ticket.ExpiresAt
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	s.sendConfirmation(ctx, c, token)
	return c, nil
}

func (s *Service) ConfirmEmail(ctx context.Context, token string) (*Cliente, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, verification.ErrTokenInvalid
	}
	c, err := s.repo.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, verification.ErrTokenInvalid
		}
		return nil, err
	}
	if err := c.verificationTicket().Redeem(token, s.now()); err != nil {
		return nil, err
	}

	c.EmailVerificado = true
	c.TokenVerificacao = nil
	c.ExpiracaoVerificacao = nil
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ResendConfirmation replaces a pending or expired confirmation token.
func (s *Service) ResendConfirmation(ctx context.Context, email string) error {
	c, err := s.repo.GetByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if c.EmailVerificado {
		return ErrAlreadyVerified
	}

	token := verification.NewToken()
	ticket := verification.Issue(token, s.now(), s.emailTokenTTL)
	c.TokenVerificacao = ticket.Token
	c.ExpiracaoVerificacao = ticket.ExpiresAt
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}
	s.sendConfirmation(ctx, c, token)
	return nil
}

func (s *Service) Login(ctx context.Context, email, senha string) (*Cliente, error) {
	c, err := s.repo.GetByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(c.SenhaHash, senha); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !c.EmailVerificado {
		return nil, ErrEmailNotVerified
	}

	now := s.now()
	c.LastLogin = &now
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Logout(ctx context.Context, id int64) error {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	now := s.now()
	c.LastLogout = &now
	return s.repo.Update(ctx, c)
}

// RequestPasswordReset issues a fresh reset code. Unknown emails are not
// reported to the caller.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	c, err := s.repo.GetByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.log.InfoContext(ctx, "password reset for unknown email")
			return nil
		}
		return err
	}

	code, err := verification.NewCode()
	if err != nil {
		return err
	}
	ticket := verification.Issue(code, s.now(), s.resetCodeTTL)
	c.CodigoRecuperacao = ticket.Token
	c.ExpiracaoRecuperacao = ticket.ExpiresAt
	if err := s.repo.Update(ctx, c); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.SendPasswordReset(ctx, c, code); err != nil {
			s.log.WarnContext(ctx, "password reset not sent", "cliente_id", c.ID, "error", err)
		}
	}
	return nil
}

// ResetPassword consumes the reset code. A consumed or unknown code yields
// ErrInvalidResetCode; an expired one yields verification.ErrTokenExpired.
func (s *Service) ResetPassword(ctx context.Context, email, code, novaSenha string) error {
	if err := validate.Password(novaSenha); err != nil {
		return err
	}
	c, err := s.repo.GetByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidResetCode
		}
		return err
	}

	if err := c.resetTicket().Redeem(strings.TrimSpace(code), s.now()); err != nil {
		if errors.Is(err, verification.ErrTokenInvalid) {
			return ErrInvalidResetCode
		}
		return err
	}

	hash, err := s.hasher.Hash(novaSenha)
	if err != nil {
		return err
	}
	c.SenhaHash = hash
	c.CodigoRecuperacao = nil
	c.ExpiracaoRecuperacao = nil
	return s.repo.Update(ctx, c)
}

func (s *Service) Get(ctx context.Context, id int64) (*Cliente, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Cliente, int64, error) {
	f.Params = f.Params.Normalize()
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Cliente, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Nome != nil {
		if err := validate.Name(*in.Nome); err != nil {
			return nil, err
		}
		c.Nome = strings.TrimSpace(*in.Nome)
	}

	var token string
	if in.Email != nil {
		email := validate.NormalizeEmail(*in.Email)
		if err := validate.Email(email); err != nil {
			return nil, err
		}
		if email != c.Email {
			if err := s.ensureEmailFree(ctx, email, c.ID); err != nil {
				return nil, err
			}
			token = verification.NewToken()
			ticket := verification.Issue(token, s.now(), s.emailTokenTTL)
			c.Email = email
			c.EmailVerificado = false
			c.TokenVerificacao = ticket.Token
			c.ExpiracaoVerificacao = ticket.ExpiresAt
		}
	}

	setString(&c.Telefone, in.Telefone)
	setString(&c.Endereco, in.Endereco)
	setString(&c.Cidade, in.Cidade)
	setString(&c.CEP, in.CEP)
	if in.Estado != nil {
		c.Estado = strings.ToUpper(strings.TrimSpace(*in.Estado))
	}
	if err := checkLimits(c); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	if token != "" {
		s.sendConfirmation(ctx, c, token)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ensureEmailFree(ctx context.Context, email string, selfID int64) error {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if existing.ID != selfID {
			return ErrEmailTaken
		}
		return nil
	case errors.Is(err, ErrNotFound):
		return nil
	default:
		return err
	}
}

func (s *Service) sendConfirmation(ctx context.Context, c *Cliente, token string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendEmailConfirmation(ctx, c, token); err != nil {
		s.log.WarnContext(ctx, "email confirmation not sent", "cliente_id", c.ID, "error", err)
	}
}

// checkLimits mirrors the column sizes of the clientes table.
func checkLimits(c *Cliente) error {
	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"nome", c.Nome, 120},
		{"email", c.Email, 255},
		{"telefone", c.Telefone, 30},
		{"endereco", c.Endereco, 255},
		{"cidade", c.Cidade, 120},
		{"estado", c.Estado, 2},
		{"cep", c.CEP, 9},
	} {
		if err := validate.MaxLen(f.name, f.value, f.max); err != nil {
			return err
		}
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

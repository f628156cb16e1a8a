package admin

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
	ErrNotFound           = errors.New("admin not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already taken")
	ErrForbidden          = errors.New("insufficient access level")
	ErrSelfDelete         = errors.New("admin cannot delete itself")
	ErrLastSuperAdmin     = errors.New("cannot remove the last superadmin")
	ErrSuperAdminExists   = errors.New("a superadmin already exists")
)

type Options struct {
	Hasher     *password.Hasher
	Notifier   Notifier
	ConfirmTTL time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
}

type Service struct {
	repo       Repository
	hasher     *password.Hasher
	notifier   Notifier
	confirmTTL time.Duration
	now        func() time.Time
	log        *slog.Logger
}

func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:       repo,
		hasher:     opts.Hasher,
		notifier:   opts.Notifier,
		confirmTTL: opts.ConfirmTTL,
		now:        opts.Now,
		log:        opts.Logger,
	}
	if s.hasher == nil {
		s.hasher = password.NewHasher(0)
	}
	if s.confirmTTL <= 0 {
		s.confirmTTL = 24 * time.Hour
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	return s
}

type CreateInput struct {
	Nome        string
	Email       string
	Senha       string
	AccessLevel AccessLevel
}

type UpdateInput struct {
	Nome        *string
	Email       *string
	Senha       *string
	AccessLevel *AccessLevel
}

func (s *Service) Login(ctx context.Context, email, senha string) (*Admin, error) {
	a, err := s.repo.GetByEmail(ctx, validate.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.hasher.Compare(a.SenhaHash, senha); err != nil {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.repo.TouchLogin(ctx, a.ID, now); err != nil {
		return nil, err
	}
	a.LastLogin = &now
	return a, nil
}

// Logout stamps lastLogout, which revokes every token issued before it.
func (s *Service) Logout(ctx context.Context, id int64) error {
	return s.repo.TouchLogout(ctx, id, s.now())
}

func (s *Service) Get(ctx context.Context, id int64) (*Admin, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Admin, int64, error) {
	f.Params = f.Params.Normalize()
	return s.repo.List(ctx, f)
}

func (s *Service) Create(ctx context.Context, actor *Admin, in CreateInput) (*Admin, error) {
	if actor == nil || !CheckLevel(actor.AccessLevel, LevelSuperAdmin) {
		return nil, ErrForbidden
	}
	a, err := s.newAdmin(ctx, in)
	if err != nil {
		return nil, err
	}

	token := verification.NewToken()
	ticket := verification.Issue(token, s.now(), s.confirmTTL)
	a.TokenConfirmacao = ticket.Token
	a.ExpiracaoConfirmacao = ticket.ExpiresAt

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	s.notifyConfirmation(ctx, a, token)
	return a, nil
}

// Bootstrap creates the first SUPERADMIN. It refuses once any SUPERADMIN exists.
func (s *Service) Bootstrap(ctx context.Context, nome, email, senha string) (*Admin, error) {
	n, err := s.repo.CountByLevel(ctx, LevelSuperAdmin)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrSuperAdminExists
	}

	a, err := s.newAdmin(ctx, CreateInput{Nome: nome, Email: email, Senha: senha, AccessLevel: LevelSuperAdmin})
	if err != nil {
		return nil, err
	}
	a.EmailConfirmado = true
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) newAdmin(ctx context.Context, in CreateInput) (*Admin, error) {
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
	if !in.AccessLevel.Valid() {
		return nil, ErrInvalidAccessLevel
	}
	if err := checkLimits(strings.TrimSpace(in.Nome), email); err != nil {
		return nil, err
	}
	if err := s.ensureEmailFree(ctx, email, 0); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Senha)
	if err != nil {
		return nil, err
	}
	return &Admin{
		Nome:        strings.TrimSpace(in.Nome),
		Email:       email,
		SenhaHash:   hash,
		AccessLevel: in.AccessLevel,
	}, nil
}

// Update applies a profile edit. Admins may edit themselves; only a SUPERADMIN
// may edit others or change an access level.
func (s *Service) Update(ctx context.Context, actor *Admin, id int64, in UpdateInput) (*Admin, error) {
	if actor == nil {
		return nil, ErrForbidden
	}
	isSuper := CheckLevel(actor.AccessLevel, LevelSuperAdmin)
	if actor.ID != id && !isSuper {
		return nil, ErrForbidden
	}
	if in.AccessLevel != nil && !isSuper {
		return nil, ErrForbidden
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Nome != nil {
		if err := validate.Name(*in.Nome); err != nil {
			return nil, err
		}
		a.Nome = strings.TrimSpace(*in.Nome)
	}

	var confirmToken string
	if in.Email != nil {
		email := validate.NormalizeEmail(*in.Email)
		if err := validate.Email(email); err != nil {
			return nil, err
		}
		if email != a.Email {
			if err := s.ensureEmailFree(ctx, email, a.ID); err != nil {
				return nil, err
			}
			confirmToken = verification.NewToken()
			ticket := verification.Issue(confirmToken, s.now(), s.confirmTTL)
			a.Email = email
			a.EmailConfirmado = false
			a.TokenConfirmacao = ticket.Token
			a.ExpiracaoConfirmacao = ticket.ExpiresAt
		}
	}

	if in.Senha != nil {
		if err := validate.Password(*in.Senha); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*in.Senha)
		if err != nil {
			return nil, err
		}
		a.SenhaHash = hash
	}

	if in.AccessLevel != nil && *in.AccessLevel != a.AccessLevel {
		if !in.AccessLevel.Valid() {
			return nil, ErrInvalidAccessLevel
		}
		if a.AccessLevel == LevelSuperAdmin {
			if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
				return nil, err
			}
		}
		a.AccessLevel = *in.AccessLevel
	}
	if err := checkLimits(a.Nome, a.Email); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	if confirmToken != "" {
		s.notifyConfirmation(ctx, a, confirmToken)
	}
	return a, nil
}

func (s *Service) Delete(ctx context.Context, actor *Admin, id int64) error {
	if actor == nil || !CheckLevel(actor.AccessLevel, LevelSuperAdmin) {
		return ErrForbidden
	}
	if actor.ID == id {
		return ErrSelfDelete
	}

	target, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if target.AccessLevel == LevelSuperAdmin {
		if err := s.ensureAnotherSuperAdmin(ctx); err != nil {
			return err
		}
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ConfirmEmail(ctx context.Context, token string) (*Admin, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, verification.ErrTokenInvalid
	}
	a, err := s.repo.GetByConfirmToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, verification.ErrTokenInvalid
		}
		return nil, err
	}
	if err := a.confirmation().Redeem(token, s.now()); err != nil {
		return nil, err
	}

	a.EmailConfirmado = true
	a.TokenConfirmacao = nil
	a.ExpiracaoConfirmacao = nil
	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
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

func (s *Service) ensureAnotherSuperAdmin(ctx context.Context) error {
	n, err := s.repo.CountByLevel(ctx, LevelSuperAdmin)
	if err != nil {
		return err
	}
	if n <= 1 {
		return ErrLastSuperAdmin
	}
	return nil
}

func checkLimits(nome, email string) error {
	if err := validate.MaxLen("nome", nome, 120); err != nil {
		return err
	}
	return validate.MaxLen("email", email, 255)
}

func (s *Service) notifyConfirmation(ctx context.Context, a *Admin, token string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendAdminConfirmation(ctx, a, token); err != nil {
		s.log.WarnContext(ctx, "admin confirmation not sent", "admin_id", a.ID, "error", err)
	}
}

package interaction

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"storefront/internal/domain/admin"
)

var (
	ErrNotFound         = errors.New("interacao not found")
	ErrProductNotFound  = errors.New("produto not found")
	ErrContentRequired  = errors.New("conteudo is required")
	ErrInvalidNota      = errors.New("nota must be between 1 and 5")
	ErrReplyNotAllowed  = errors.New("admin replies must use the reply endpoint")
	ErrAlreadyLiked     = errors.New("cliente already liked this produto")
	ErrForbidden        = errors.New("not allowed to modify this interaction")
	ErrMissingProdutoID = errors.New("produtoId is required")
)

const (
	MinNota = 1
	MaxNota = 5
)

type Options struct {
	Products ProductLookup
	// Events receives a copy of every stored interaction. Sends never block;
	// a full channel drops the event.
	Events chan<- Event
	Now    func() time.Time
	Logger *slog.Logger
}

type Service struct {
	repo     Repository
	products ProductLookup
	events   chan<- Event
	now      func() time.Time
	log      *slog.Logger
}

func NewService(repo Repository, opts Options) *Service {
	s := &Service{
		repo:     repo,
		products: opts.Products,
		events:   opts.Events,
		now:      opts.Now,
		log:      opts.Logger,
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
	ProdutoID int64
	Tipo      Tipo
	Conteudo  string
	Nota      *int
}

// Actor identifies who is acting on an interaction: a customer, an admin, or
// neither.
type Actor struct {
	ClienteID  int64
	AdminLevel admin.AccessLevel
}

func (s *Service) Create(ctx context.Context, clienteID int64, in CreateInput) (*Interacao, error) {
	if in.ProdutoID <= 0 {
		return nil, ErrMissingProdutoID
	}
	if !in.Tipo.Valid() {
		return nil, ErrInvalidTipo
	}
	if in.Tipo == TipoRespostaAdmin {
		return nil, ErrReplyNotAllowed
	}

	conteudo := strings.TrimSpace(in.Conteudo)
	if in.Tipo == TipoComentario && conteudo == "" {
		return nil, ErrContentRequired
	}
	if in.Tipo == TipoAvaliacao && in.Nota == nil {
		return nil, ErrInvalidNota
	}
	if in.Nota != nil && (*in.Nota < MinNota || *in.Nota > MaxNota) {
		return nil, ErrInvalidNota
	}

	if err := s.ensureProduct(ctx, in.ProdutoID); err != nil {
		return nil, err
	}

	if in.Tipo == TipoCurtida {
		liked, err := s.repo.HasInteraction(ctx, clienteID, in.ProdutoID, TipoCurtida)
		if err != nil {
			return nil, err
		}
		if liked {
			return nil, ErrAlreadyLiked
		}
	}

	i := &Interacao{
		Tipo:      in.Tipo,
		ProdutoID: in.ProdutoID,
		ClienteID: &clienteID,
		Conteudo:  conteudo,
		Nota:      in.Nota,
	}
	if err := s.repo.Create(ctx, i); err != nil {
		return nil, err
	}
	s.publish(ctx, i)
	return i, nil
}

// Reply stores an admin answer to an existing interaction on the same product.
func (s *Service) Reply(ctx context.Context, adminID, parentID int64, conteudo string) (*Interacao, error) {
	conteudo = strings.TrimSpace(conteudo)
	if conteudo == "" {
		return nil, ErrContentRequired
	}
	parent, err := s.repo.GetByID(ctx, parentID)
	if err != nil {
		return nil, err
	}

	i := &Interacao{
		Tipo:      TipoRespostaAdmin,
		ProdutoID: parent.ProdutoID,
		AdminID:   &adminID,
		RespostaA: &parent.ID,
		Conteudo:  conteudo,
	}
	if err := s.repo.Create(ctx, i); err != nil {
		return nil, err
	}
	s.publish(ctx, i)
	return i, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Interacao, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Interacao, int64, error) {
	if f.Tipo != "" && !f.Tipo.Valid() {
		return nil, 0, ErrInvalidTipo
	}
	f.Params = f.Params.Normalize()
	return s.repo.List(ctx, f)
}

// Delete lets the owning customer or any EDITOR+ admin remove an interaction.
func (s *Service) Delete(ctx context.Context, actor Actor, id int64) error {
	i, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !canDelete(actor, i) {
		return ErrForbidden
	}
	return s.repo.Delete(ctx, id)
}

func canDelete(actor Actor, i *Interacao) bool {
	if actor.AdminLevel != "" && admin.CheckLevel(actor.AdminLevel, admin.LevelEditor) {
		return true
	}
	return actor.ClienteID != 0 && i.ClienteID != nil && *i.ClienteID == actor.ClienteID
}

func (s *Service) Summary(ctx context.Context, produtoID int64) (*Summary, error) {
	if err := s.ensureProduct(ctx, produtoID); err != nil {
		return nil, err
	}
	counts, err := s.repo.CountByTipo(ctx, produtoID)
	if err != nil {
		return nil, err
	}
	avg, err := s.repo.AverageNota(ctx, produtoID)
	if err != nil {
		return nil, err
	}

	sum := &Summary{ProdutoID: produtoID, Contagens: make(map[Tipo]int64, len(Tipos)), MediaNota: avg}
	for _, t := range Tipos {
		n := counts[t]
		sum.Contagens[t] = n
		sum.Total += n
	}
	sum.Avaliacoes = counts[TipoAvaliacao]
	return sum, nil
}

func (s *Service) ensureProduct(ctx context.Context, produtoID int64) error {
	if s.products == nil {
		return nil
	}
	ok, err := s.products.Exists(ctx, produtoID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrProductNotFound
	}
	return nil
}

func (s *Service) publish(ctx context.Context, i *Interacao) {
	if s.events == nil {
		return
	}
	ev := Event{ID: i.ID, Tipo: i.Tipo, ProdutoID: i.ProdutoID, At: s.now()}
	select {
	case s.events <- ev:
	default:
		s.log.WarnContext(ctx, "interaction event dropped", "interacao_id", i.ID)
	}
}

package product

import (
	"context"
	"errors"
	"math"
	"strings"

	"storefront/internal/platform/validate"
)

var (
	ErrNotFound      = errors.New("produto not found")
	ErrNameRequired  = errors.New("nome is required")
	ErrInvalidPrice  = errors.New("preco must be zero or positive")
	ErrInvalidStock  = errors.New("estoque must be zero or positive")
	ErrInvalidFilter = errors.New("precoMin must not exceed precoMax")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type Input struct {
	Nome       string
	Descricao  string
	Preco      float64
	Categoria  string
	Tamanhos   []string
	Cores      []string
	Imagens    []string
	Estoque    int
	Disponivel *bool
}

type UpdateInput struct {
	Nome       *string
	Descricao  *string
	Preco      *float64
	Categoria  *string
	Tamanhos   *[]string
	Cores      *[]string
	Imagens    *[]string
	Estoque    *int
	Disponivel *bool
}

func (s *Service) Create(ctx context.Context, in Input) (*Produto, error) {
	p := &Produto{
		Nome:      strings.TrimSpace(in.Nome),
		Descricao: strings.TrimSpace(in.Descricao),
		Preco:     in.Preco,
		Categoria: strings.TrimSpace(in.Categoria),
		Tamanhos:  cleanList(in.Tamanhos),
		Cores:     cleanList(in.Cores),
		Imagens:   cleanList(in.Imagens),
		Estoque:   in.Estoque,
	}
	if in.Disponivel != nil {
		p.Disponivel = *in.Disponivel
	} else {
		p.Disponivel = p.Estoque > 0
	}
	if err := validateProduto(p); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Produto, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Produto, int64, error) {
	if (f.PrecoMin != nil && !finite(*f.PrecoMin)) || (f.PrecoMax != nil && !finite(*f.PrecoMax)) {
		return nil, 0, ErrInvalidFilter
	}
	if f.PrecoMin != nil && f.PrecoMax != nil && *f.PrecoMin > *f.PrecoMax {
		return nil, 0, ErrInvalidFilter
	}
	f.Categoria = strings.TrimSpace(f.Categoria)
	f.Busca = strings.TrimSpace(f.Busca)
	f.Params = f.Params.Normalize()
	return s.repo.List(ctx, f)
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Produto, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Nome != nil {
		p.Nome = strings.TrimSpace(*in.Nome)
	}
	if in.Descricao != nil {
		p.Descricao = strings.TrimSpace(*in.Descricao)
	}
	if in.Preco != nil {
		p.Preco = *in.Preco
	}
	if in.Categoria != nil {
		p.Categoria = strings.TrimSpace(*in.Categoria)
	}
	if in.Tamanhos != nil {
		p.Tamanhos = cleanList(*in.Tamanhos)
	}
	if in.Cores != nil {
		p.Cores = cleanList(*in.Cores)
	}
	if in.Imagens != nil {
		p.Imagens = cleanList(*in.Imagens)
	}
	if in.Estoque != nil {
		p.Estoque = *in.Estoque
	}
	if in.Disponivel != nil {
		p.Disponivel = *in.Disponivel
	}

	if err := validateProduto(p); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	return s.repo.Exists(ctx, id)
}

func validateProduto(p *Produto) error {
	if p.Nome == "" {
		return ErrNameRequired
	}
	if p.Preco < 0 || !finite(p.Preco) {
		return ErrInvalidPrice
	}
	if p.Estoque < 0 {
		return ErrInvalidStock
	}
	if err := validate.MaxLen("nome", p.Nome, 160); err != nil {
		return err
	}
	return validate.MaxLen("categoria", p.Categoria, 80)
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

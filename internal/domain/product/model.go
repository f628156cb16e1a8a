package product

import (
	"context"
	"time"

	"storefront/internal/platform/paging"
)

type Produto struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	Nome       string    `gorm:"size:160;not null" json:"nome"`
	Descricao  string    `gorm:"type:text" json:"descricao"`
	Preco      float64   `gorm:"not null" json:"preco"`
	Categoria  string    `gorm:"size:80;index" json:"categoria"`
	Tamanhos   []string  `gorm:"serializer:json" json:"tamanhos"`
	Cores      []string  `gorm:"serializer:json" json:"cores"`
	Imagens    []string  `gorm:"serializer:json" json:"imagens"`
	Estoque    int       `gorm:"not null" json:"estoque"`
	Disponivel bool      `gorm:"not null;index" json:"disponivel"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Produto) TableName() string { return "produtos" }

type ListFilter struct {
	Categoria  string
	Busca      string
	Disponivel *bool
	PrecoMin   *float64
	PrecoMax   *float64
	paging.Params
}

type Repository interface {
	Create(ctx context.Context, p *Produto) error
	GetByID(ctx context.Context, id int64) (*Produto, error)
	List(ctx context.Context, f ListFilter) ([]Produto, int64, error)
	Update(ctx context.Context, p *Produto) error
	// Delete removes the product together with its interactions.
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
}

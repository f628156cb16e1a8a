package interaction

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/platform/paging"
)

type Tipo string

const (
	TipoCurtida          Tipo = "CURTIDA"
	TipoComentario       Tipo = "COMENTARIO"
	TipoCompartilhamento Tipo = "COMPARTILHAMENTO"
	TipoCompra           Tipo = "COMPRA"
	TipoVisualizacao     Tipo = "VISUALIZACAO"
	TipoAvaliacao        Tipo = "AVALIACAO"
	TipoRespostaAdmin    Tipo = "RESPOSTA_ADMIN"
)

var ErrInvalidTipo = errors.New("invalid interaction type")

// Tipos lists every interaction type in display order.
var Tipos = []Tipo{
	TipoCurtida,
	TipoComentario,
	TipoCompartilhamento,
	TipoCompra,
	TipoVisualizacao,
	TipoAvaliacao,
	TipoRespostaAdmin,
}

func (t Tipo) Valid() bool {
	for _, v := range Tipos {
		if v == t {
			return true
		}
	}
	return false
}

func ParseTipo(s string) (Tipo, error) {
	t := Tipo(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", ErrInvalidTipo
	}
	return t, nil
}

// Interacao links a customer (or, for RESPOSTA_ADMIN, an admin) to a product.
// Exactly one of ClienteID and AdminID is set. A customer holds at most one
// CURTIDA per product.
type Interacao struct {
	ID        int64     `gorm:"primaryKey" json:"id"`
	Tipo      Tipo      `gorm:"size:20;not null;index" json:"tipo"`
	ProdutoID int64     `gorm:"not null;index;uniqueIndex:idx_interacoes_curtida,where:tipo = 'CURTIDA'" json:"produtoId"`
	ClienteID *int64    `gorm:"index;uniqueIndex:idx_interacoes_curtida,where:tipo = 'CURTIDA'" json:"clienteId,omitempty"`
	AdminID   *int64    `json:"adminId,omitempty"`
	RespostaA *int64    `gorm:"index" json:"respostaA,omitempty"`
	Conteudo  string    `gorm:"type:text" json:"conteudo,omitempty"`
	Nota      *int      `json:"nota,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (Interacao) TableName() string { return "interacoes" }

type ListFilter struct {
	ProdutoID *int64
	ClienteID *int64
	Tipo      Tipo
	paging.Params
}

// Summary aggregates the interactions of one product.
type Summary struct {
	ProdutoID  int64          `json:"produtoId"`
	Contagens  map[Tipo]int64 `json:"contagens"`
	Total      int64          `json:"total"`
	Avaliacoes int64          `json:"avaliacoes"`
	MediaNota  *float64       `json:"mediaNota"`
}

type Repository interface {
	Create(ctx context.Context, i *Interacao) error
	GetByID(ctx context.Context, id int64) (*Interacao, error)
	List(ctx context.Context, f ListFilter) ([]Interacao, int64, error)
	// Delete removes the interaction and the admin replies pointing at it.
	Delete(ctx context.Context, id int64) error
	CountByTipo(ctx context.Context, produtoID int64) (map[Tipo]int64, error)
	AverageNota(ctx context.Context, produtoID int64) (*float64, error)
	HasInteraction(ctx context.Context, clienteID, produtoID int64, tipo Tipo) (bool, error)
}

// ProductLookup is the slice of the product service interactions depend on.
type ProductLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// Event is published after an interaction is stored.
type Event struct {
	ID        int64
	Tipo      Tipo
	ProdutoID int64
	At        time.Time
}

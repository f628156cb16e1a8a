package customer

import (
	"context"
	"time"

	"storefront/internal/domain/verification"
	"storefront/internal/platform/paging"
)

type Cliente struct {
	ID                   int64      `gorm:"primaryKey" json:"id"`
	Nome                 string     `gorm:"size:120;not null" json:"nome"`
	Email                string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	SenhaHash            string     `gorm:"not null" json:"-"`
	Telefone             string     `gorm:"size:30" json:"telefone,omitempty"`
	Endereco             string     `gorm:"size:255" json:"endereco,omitempty"`
	Cidade               string     `gorm:"size:120" json:"cidade,omitempty"`
	Estado               string     `gorm:"size:2" json:"estado,omitempty"`
	CEP                  string     `gorm:"column:cep;size:9" json:"cep,omitempty"`
	EmailVerificado      bool       `gorm:"not null" json:"emailVerificado"`
	TokenVerificacao     *string    `gorm:"size:64;uniqueIndex" json:"-"`
	ExpiracaoVerificacao *time.Time `json:"-"`
	CodigoRecuperacao    *string    `gorm:"size:6" json:"-"`
	ExpiracaoRecuperacao *time.Time `json:"-"`
	LastLogin            *time.Time `json:"lastLogin,omitempty"`
	LastLogout           *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

func (Cliente) TableName() string { return "clientes" }

// TokenRevoked compares at the millisecond precision of token iat.
func (c *Cliente) TokenRevoked(issuedAt time.Time) bool {
	return c.LastLogout != nil && issuedAt.Before(c.LastLogout.Truncate(time.Millisecond))
}

func (c *Cliente) verificationTicket() verification.Ticket {
	return verification.Ticket{Token: c.TokenVerificacao, ExpiresAt: c.ExpiracaoVerificacao}
}

func (c *Cliente) resetTicket() verification.Ticket {
	return verification.Ticket{Token: c.CodigoRecuperacao, ExpiresAt: c.ExpiracaoRecuperacao}
}

type ListFilter struct {
	Busca      string
	Verificado *bool
	paging.Params
}

type Repository interface {
	Create(ctx context.Context, c *Cliente) error
	GetByID(ctx context.Context, id int64) (*Cliente, error)
	GetByEmail(ctx context.Context, email string) (*Cliente, error)
	GetByVerificationToken(ctx context.Context, token string) (*Cliente, error)
	List(ctx context.Context, f ListFilter) ([]Cliente, int64, error)
	Update(ctx context.Context, c *Cliente) error
	// Delete removes the customer together with its interactions.
	Delete(ctx context.Context, id int64) error
}

type Notifier interface {
	SendEmailConfirmation(ctx context.Context, c *Cliente, token string) error
	SendPasswordReset(ctx context.Context, c *Cliente, code string) error
}

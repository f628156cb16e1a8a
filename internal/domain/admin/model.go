package admin

import (
	"context"
	"time"

	"storefront/internal/domain/verification"
	"storefront/internal/platform/paging"
)

type Admin struct {
	ID                   int64       `gorm:"primaryKey" json:"id"`
	Nome                 string      `gorm:"size:120;not null" json:"nome"`
	Email                string      `gorm:"size:255;not null;uniqueIndex" json:"email"`
	SenhaHash            string      `gorm:"not null" json:"-"`
	AccessLevel          AccessLevel `gorm:"size:20;not null;index" json:"accessLevel"`
	EmailConfirmado      bool        `gorm:"not null" json:"emailConfirmado"`
	TokenConfirmacao     *string     `gorm:"size:64;uniqueIndex" json:"-"`
	ExpiracaoConfirmacao *time.Time  `json:"-"`
	LastLogin            *time.Time  `json:"lastLogin,omitempty"`
	LastLogout           *time.Time  `json:"lastLogout,omitempty"`
	CreatedAt            time.Time   `json:"createdAt"`
	UpdatedAt            time.Time   `json:"updatedAt"`
}

func (Admin) TableName() string { return "admins" }

// TokenRevoked reports whether a token issued at issuedAt predates the last
// logout. Tokens carry millisecond iat, so the logout is compared at that
// precision.
func (a *Admin) TokenRevoked(issuedAt time.Time) bool {
	return a.LastLogout != nil && issuedAt.Before(a.LastLogout.Truncate(time.Millisecond))
}

func (a *Admin) confirmation() verification.Ticket {
	return verification.Ticket{Token: a.TokenConfirmacao, ExpiresAt: a.ExpiracaoConfirmacao}
}

type ListFilter struct {
	Busca       string
	AccessLevel AccessLevel
	paging.Params
}

type Repository interface {
	Create(ctx context.Context, a *Admin) error
	GetByID(ctx context.Context, id int64) (*Admin, error)
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	GetByConfirmToken(ctx context.Context, token string) (*Admin, error)
	List(ctx context.Context, f ListFilter) ([]Admin, int64, error)
	// Update and Delete fail with ErrLastSuperAdmin when they would leave no
	// SUPERADMIN.
	Update(ctx context.Context, a *Admin) error
	Delete(ctx context.Context, id int64) error
	CountByLevel(ctx context.Context, level AccessLevel) (int64, error)
	TouchLogin(ctx context.Context, id int64, at time.Time) error
	TouchLogout(ctx context.Context, id int64, at time.Time) error
}

type Notifier interface {
	SendAdminConfirmation(ctx context.Context, a *Admin, token string) error
}

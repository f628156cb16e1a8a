package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"storefront/internal/domain/admin"
	"storefront/internal/domain/customer"
	"storefront/internal/domain/interaction"
	"storefront/internal/domain/product"
)

// Store wraps the shared gorm handle. Repositories built from a Store inside
// WithTx share its transaction.
type Store struct {
	DB *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{DB: db} }

func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{DB: tx})
	})
}

// Migrate creates or updates every table the API needs.
func (s *Store) Migrate(ctx context.Context) error {
	return s.DB.WithContext(ctx).AutoMigrate(
		&admin.Admin{},
		&customer.Cliente{},
		&product.Produto{},
		&interaction.Interacao{},
	)
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Admins() *AdminRepo         { return &AdminRepo{store: s} }
func (s *Store) Clientes() *ClienteRepo     { return &ClienteRepo{store: s} }
func (s *Store) Produtos() *ProdutoRepo     { return &ProdutoRepo{store: s} }
func (s *Store) Interacoes() *InteracaoRepo { return &InteracaoRepo{store: s} }

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern builds a substring pattern for use with `LIKE ? ESCAPE '\'`.
// Wildcards typed by the caller match literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

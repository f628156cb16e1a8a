package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"storefront/internal/domain/customer"
	"storefront/internal/domain/interaction"
)

type ClienteRepo struct {
	store *Store
}

func (r *ClienteRepo) db(ctx context.Context) *gorm.DB {
	return r.store.DB.WithContext(ctx)
}

func (r *ClienteRepo) Create(ctx context.Context, c *customer.Cliente) error {
	if err := r.db(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return customer.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *ClienteRepo) GetByID(ctx context.Context, id int64) (*customer.Cliente, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *ClienteRepo) GetByEmail(ctx context.Context, email string) (*customer.Cliente, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *ClienteRepo) GetByVerificationToken(ctx context.Context, token string) (*customer.Cliente, error) {
	return r.first(ctx, "token_verificacao = ?", token)
}

func (r *ClienteRepo) first(ctx context.Context, query string, args ...any) (*customer.Cliente, error) {
	var c customer.Cliente
	if err := r.db(ctx).Where(query, args...).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customer.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ClienteRepo) List(ctx context.Context, f customer.ListFilter) ([]customer.Cliente, int64, error) {
	q := r.db(ctx).Model(&customer.Cliente{})
	if busca := strings.ToLower(strings.TrimSpace(f.Busca)); busca != "" {
		q = q.Where("LOWER(nome) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", likePattern(busca), likePattern(busca))
	}
	if f.Verificado != nil {
		q = q.Where("email_verificado = ?", *f.Verificado)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clientes []customer.Cliente
	p := f.Params.Normalize()
	if err := q.Order("id").Limit(p.Limit).Offset(p.Offset()).Find(&clientes).Error; err != nil {
		return nil, 0, err
	}
	return clientes, total, nil
}

func (r *ClienteRepo) Update(ctx context.Context, c *customer.Cliente) error {
	res := r.db(ctx).Model(c).Select("*").Omit("id", "created_at").Updates(c)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return customer.ErrEmailTaken
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return customer.ErrNotFound
	}
	return nil
}

// Delete removes the customer, its interactions and the admin replies to them
// in a single transaction.
func (r *ClienteRepo) Delete(ctx context.Context, id int64) error {
	return r.store.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		owned := db.Model(&interaction.Interacao{}).Select("id").Where("cliente_id = ?", id)
		if err := db.Where("resposta_a IN (?)", owned).Delete(&interaction.Interacao{}).Error; err != nil {
			return err
		}
		if err := db.Where("cliente_id = ?", id).Delete(&interaction.Interacao{}).Error; err != nil {
			return err
		}

		res := db.Delete(&customer.Cliente{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return customer.ErrNotFound
		}
		return nil
	})
}

package postgres

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"storefront/internal/domain/interaction"
	"storefront/internal/domain/product"
)

type ProdutoRepo struct {
	store *Store
}

func (r *ProdutoRepo) db(ctx context.Context) *gorm.DB {
	return r.store.DB.WithContext(ctx)
}

func (r *ProdutoRepo) Create(ctx context.Context, p *product.Produto) error {
	return r.db(ctx).Create(p).Error
}

func (r *ProdutoRepo) GetByID(ctx context.Context, id int64) (*product.Produto, error) {
	var p product.Produto
	if err := r.db(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, product.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *ProdutoRepo) List(ctx context.Context, f product.ListFilter) ([]product.Produto, int64, error) {
	q := r.db(ctx).Model(&product.Produto{})
	if f.Categoria != "" {
		q = q.Where("LOWER(categoria) = ?", strings.ToLower(f.Categoria))
	}
	if busca := strings.ToLower(f.Busca); busca != "" {
		q = q.Where("LOWER(nome) LIKE ? ESCAPE '\\' OR LOWER(descricao) LIKE ? ESCAPE '\\'", likePattern(busca), likePattern(busca))
	}
	if f.Disponivel != nil {
		q = q.Where("disponivel = ?", *f.Disponivel)
	}
	if f.PrecoMin != nil {
		q = q.Where("preco >= ?", *f.PrecoMin)
	}
	if f.PrecoMax != nil {
		q = q.Where("preco <= ?", *f.PrecoMax)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var produtos []product.Produto
	p := f.Params.Normalize()
	if err := q.Order("created_at DESC, id DESC").Limit(p.Limit).Offset(p.Offset()).Find(&produtos).Error; err != nil {
		return nil, 0, err
	}
	return produtos, total, nil
}

func (r *ProdutoRepo) Update(ctx context.Context, p *product.Produto) error {
	res := r.db(ctx).Model(p).Select("*").Omit("id", "created_at").Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return product.ErrNotFound
	}
	return nil
}

// Delete removes the product and every interaction on it, replies included,
// in a single transaction.
func (r *ProdutoRepo) Delete(ctx context.Context, id int64) error {
	return r.store.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)
		if err := db.Where("produto_id = ?", id).Delete(&interaction.Interacao{}).Error; err != nil {
			return err
		}
		res := db.Delete(&product.Produto{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return product.ErrNotFound
		}
		return nil
	})
}

func (r *ProdutoRepo) Exists(ctx context.Context, id int64) (bool, error) {
	var n int64
	err := r.db(ctx).Model(&product.Produto{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

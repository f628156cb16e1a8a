package postgres

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"

	"storefront/internal/domain/interaction"
)

type InteracaoRepo struct {
	store *Store
}

func (r *InteracaoRepo) db(ctx context.Context) *gorm.DB {
	return r.store.DB.WithContext(ctx)
}

func (r *InteracaoRepo) Create(ctx context.Context, i *interaction.Interacao) error {
	if err := r.db(ctx).Create(i).Error; err != nil {
		if isUniqueViolation(err) {
			return interaction.ErrAlreadyLiked
		}
		return err
	}
	return nil
}

func (r *InteracaoRepo) GetByID(ctx context.Context, id int64) (*interaction.Interacao, error) {
	var i interaction.Interacao
	if err := r.db(ctx).First(&i, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, interaction.ErrNotFound
		}
		return nil, err
	}
	return &i, nil
}

func (r *InteracaoRepo) List(ctx context.Context, f interaction.ListFilter) ([]interaction.Interacao, int64, error) {
	q := r.db(ctx).Model(&interaction.Interacao{})
	if f.ProdutoID != nil {
		q = q.Where("produto_id = ?", *f.ProdutoID)
	}
	if f.ClienteID != nil {
		q = q.Where("cliente_id = ?", *f.ClienteID)
	}
	if f.Tipo != "" {
		q = q.Where("tipo = ?", f.Tipo)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []interaction.Interacao
	p := f.Params.Normalize()
	if err := q.Order("created_at DESC, id DESC").Limit(p.Limit).Offset(p.Offset()).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *InteracaoRepo) Delete(ctx context.Context, id int64) error {
	return r.store.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)
		if err := db.Where("resposta_a = ?", id).Delete(&interaction.Interacao{}).Error; err != nil {
			return err
		}
		res := db.Delete(&interaction.Interacao{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return interaction.ErrNotFound
		}
		return nil
	})
}

func (r *InteracaoRepo) CountByTipo(ctx context.Context, produtoID int64) (map[interaction.Tipo]int64, error) {
	var rows []struct {
		Tipo  interaction.Tipo
		Total int64
	}
	err := r.db(ctx).Model(&interaction.Interacao{}).
		Select("tipo, COUNT(*) AS total").
		Where("produto_id = ?", produtoID).
		Group("tipo").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[interaction.Tipo]int64, len(rows))
	for _, row := range rows {
		counts[row.Tipo] = row.Total
	}
	return counts, nil
}

func (r *InteracaoRepo) AverageNota(ctx context.Context, produtoID int64) (*float64, error) {
	var avg sql.NullFloat64
	err := r.db(ctx).Model(&interaction.Interacao{}).
		Select("AVG(nota)").
		Where("produto_id = ? AND tipo = ? AND nota IS NOT NULL", produtoID, interaction.TipoAvaliacao).
		Row().Scan(&avg)
	if err != nil {
		return nil, err
	}
	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

func (r *InteracaoRepo) HasInteraction(ctx context.Context, clienteID, produtoID int64, tipo interaction.Tipo) (bool, error) {
	var n int64
	err := r.db(ctx).Model(&interaction.Interacao{}).
		Where("cliente_id = ? AND produto_id = ? AND tipo = ?", clienteID, produtoID, tipo).
		Count(&n).Error
	return n > 0, err
}

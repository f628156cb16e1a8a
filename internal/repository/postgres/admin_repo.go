package postgres

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storefront/internal/domain/admin"
	"storefront/internal/domain/interaction"
)

type AdminRepo struct {
	store *Store
}

func (r *AdminRepo) db(ctx context.Context) *gorm.DB {
	return r.store.DB.WithContext(ctx)
}

func (r *AdminRepo) Create(ctx context.Context, a *admin.Admin) error {
	if err := r.db(ctx).Create(a).Error; err != nil {
		if isUniqueViolation(err) {
			return admin.ErrEmailTaken
		}
		return err
	}
	return nil
}

func (r *AdminRepo) GetByID(ctx context.Context, id int64) (*admin.Admin, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *AdminRepo) GetByEmail(ctx context.Context, email string) (*admin.Admin, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *AdminRepo) GetByConfirmToken(ctx context.Context, token string) (*admin.Admin, error) {
	return r.first(ctx, "token_confirmacao = ?", token)
}

func (r *AdminRepo) first(ctx context.Context, query string, args ...any) (*admin.Admin, error) {
	var a admin.Admin
	if err := r.db(ctx).Where(query, args...).First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, admin.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *AdminRepo) List(ctx context.Context, f admin.ListFilter) ([]admin.Admin, int64, error) {
	q := r.db(ctx).Model(&admin.Admin{})
	if busca := strings.ToLower(strings.TrimSpace(f.Busca)); busca != "" {
		q = q.Where("LOWER(nome) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\'", likePattern(busca), likePattern(busca))
	}
	if f.AccessLevel != "" {
		q = q.Where("access_level = ?", f.AccessLevel)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var admins []admin.Admin
	p := f.Params.Normalize()
	if err := q.Order("id").Limit(p.Limit).Offset(p.Offset()).Find(&admins).Error; err != nil {
		return nil, 0, err
	}
	return admins, total, nil
}

// Update writes every column. A write that takes the last SUPERADMIN's level
// away fails with admin.ErrLastSuperAdmin.
func (r *AdminRepo) Update(ctx context.Context, a *admin.Admin) error {
	return r.store.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		if a.AccessLevel != admin.LevelSuperAdmin {
			if err := keepLastSuperAdmin(db, a.ID); err != nil {
				return err
			}
		}

		res := db.Model(a).Select("*").Omit("id", "created_at").Updates(a)
		if res.Error != nil {
			if isUniqueViolation(res.Error) {
				return admin.ErrEmailTaken
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return admin.ErrNotFound
		}
		return nil
	})
}

// Delete removes the admin and its RESPOSTA_ADMIN interactions.
func (r *AdminRepo) Delete(ctx context.Context, id int64) error {
	return r.store.WithTx(ctx, func(tx *Store) error {
		db := tx.DB.WithContext(ctx)

		if err := keepLastSuperAdmin(db, id); err != nil {
			return err
		}
		if err := db.Where("admin_id = ?", id).Delete(&interaction.Interacao{}).Error; err != nil {
			return err
		}

		res := db.Delete(&admin.Admin{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return admin.ErrNotFound
		}
		return nil
	})
}

// keepLastSuperAdmin locks the SUPERADMIN rows in id order and fails when id
// is the only one left. Concurrent demotions and deletes queue on the lock and
// see each other's writes.
func keepLastSuperAdmin(db *gorm.DB, id int64) error {
	var ids []int64
	err := db.Model(&admin.Admin{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("access_level = ?", admin.LevelSuperAdmin).
		Order("id").
		Pluck("id", &ids).Error
	if err != nil {
		return err
	}
	if len(ids) <= 1 && slices.Contains(ids, id) {
		return admin.ErrLastSuperAdmin
	}
	return nil
}

func (r *AdminRepo) CountByLevel(ctx context.Context, level admin.AccessLevel) (int64, error) {
	var n int64
	err := r.db(ctx).Model(&admin.Admin{}).Where("access_level = ?", level).Count(&n).Error
	return n, err
}

func (r *AdminRepo) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	return r.touch(ctx, id, "last_login", at)
}

func (r *AdminRepo) TouchLogout(ctx context.Context, id int64, at time.Time) error {
	return r.touch(ctx, id, "last_logout", at)
}

func (r *AdminRepo) touch(ctx context.Context, id int64, column string, at time.Time) error {
	res := r.db(ctx).Model(&admin.Admin{}).Where("id = ?", id).Update(column, at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return admin.ErrNotFound
	}
	return nil
}

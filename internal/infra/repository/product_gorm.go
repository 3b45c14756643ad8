package repository

import (
	"context"
	"errors"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

// タグ/名前で絞り込んでid順に返す。
func (r *ProductGormRepository) List(ctx context.Context, q repo.ProductListQuery) ([]model.Product, error) {
	tx := r.db.WithContext(ctx).Model(&model.Product{}).Preload("Tags")

	if tag := strings.TrimSpace(q.Tag); tag != "" {
		tx = tx.
			Joins("JOIN product_tags ON product_tags.product_id = products.id").
			Joins("JOIN tags ON tags.id = product_tags.tag_id").
			Where("tags.name = ?", tag)
	}

	// ILIKEはsqliteに無いのでLOWERで揃える
	if s := strings.TrimSpace(q.Q); s != "" {
		tx = tx.Where("LOWER(products.name) LIKE ?", "%"+strings.ToLower(s)+"%")
	}

	var products []model.Product
	if err := tx.Order("products.id asc").Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// IDで商品を取得
func (r *ProductGormRepository) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Preload("Tags").First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&products).Error; err != nil {
		return []model.Product{}, err
	}
	return products, nil
}

// 商品の作成。タグは名前で探して無ければ作る。
func (r *ProductGormRepository) Create(ctx context.Context, p model.Product, tagNames []string) (model.Product, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tags := make([]model.Tag, 0, len(tagNames))
		for _, name := range tagNames {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			var t model.Tag
			if err := tx.Where(model.Tag{Name: name}).FirstOrCreate(&t).Error; err != nil {
				return err
			}
			tags = append(tags, t)
		}

		p.Tags = nil
		if err := tx.Omit("Tags").Create(&p).Error; err != nil {
			return err
		}
		if len(tags) > 0 {
			if err := tx.Model(&p).Association("Tags").Append(tags); err != nil {
				return err
			}
		}
		p.Tags = tags
		return nil
	})
	if err != nil {
		return model.Product{}, translate(err)
	}
	return p, nil
}

// 商品削除
// 会員カートの明細はFKのcascadeで消える。注文から参照されていればErrReferenced。
func (r *ProductGormRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p := model.Product{ID: id}
		if err := tx.Model(&p).Association("Tags").Clear(); err != nil {
			return translate(err)
		}

		res := tx.Delete(&model.Product{}, id)
		if res.Error != nil {
			return translate(res.Error)
		}
		if res.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

func (r *ProductGormRepository) ListTags(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	if err := r.db.WithContext(ctx).Order("name asc").Find(&tags).Error; err != nil {
		return []model.Tag{}, err
	}
	return tags, nil
}

func (r *ProductGormRepository) CreateTag(ctx context.Context, name string) (model.Tag, error) {
	t := model.Tag{Name: strings.TrimSpace(name)}
	if err := r.db.WithContext(ctx).Create(&t).Error; err != nil {
		return model.Tag{}, translate(err)
	}
	return t, nil
}

package repo

import (
	"context"

	"gorm.io/gorm"

	"perfume-catalog/internal/domain"
)

type BrandRepo struct{ db *gorm.DB }

func NewBrandRepo(db *gorm.DB) *BrandRepo { return &BrandRepo{db: db} }

var brandUnique = []uniqueTarget{{"idx_brands_category_name", domain.ErrDuplicateName}}

func (r *BrandRepo) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Preload("Category")
}

func (r *BrandRepo) List(ctx context.Context) ([]domain.Brand, error) {
	var bs []domain.Brand
	if err := r.base(ctx).Order("name").Find(&bs).Error; err != nil {
		return nil, err
	}
	return bs, nil
}

func (r *BrandRepo) ListByCategory(ctx context.Context, categoryID uint) ([]domain.Brand, error) {
	var bs []domain.Brand
	if err := r.base(ctx).Where("category_id = ?", categoryID).Order("name").Find(&bs).Error; err != nil {
		return nil, err
	}
	return bs, nil
}

func (r *BrandRepo) FindByID(ctx context.Context, id uint) (*domain.Brand, error) {
	var b domain.Brand
	if err := r.base(ctx).First(&b, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *BrandRepo) FindByNameInCategory(ctx context.Context, name string, categoryID uint) (*domain.Brand, error) {
	var b domain.Brand
	err := r.db.WithContext(ctx).
		Where("name = ? AND category_id = ?", name, categoryID).
		First(&b).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

// FindWithPerfumes 连同直接子 Perfume 一起加载（删除前检查用）
func (r *BrandRepo) FindWithPerfumes(ctx context.Context, id uint) (*domain.Brand, error) {
	var b domain.Brand
	err := r.base(ctx).
		Preload("Perfumes", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		First(&b, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &b, nil
}

func (r *BrandRepo) Create(ctx context.Context, b *domain.Brand) error {
	err := r.db.WithContext(ctx).Omit("Category", "Perfumes").Create(b).Error
	return translate(err, domain.ErrReferenceNotFound, domain.ErrDuplicateName, brandUnique...)
}

func (r *BrandRepo) Update(ctx context.Context, b *domain.Brand) error {
	err := r.db.WithContext(ctx).Omit("Category", "Perfumes").Save(b).Error
	return translate(err, domain.ErrReferenceNotFound, domain.ErrDuplicateName, brandUnique...)
}

func (r *BrandRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Brand{}, id)
	if res.Error != nil {
		return translate(res.Error, domain.ErrHasDependents, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *BrandRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Brand{}).Count(&n).Error
	return n, err
}

package repo

import (
	"context"

	"gorm.io/gorm"

	"perfume-catalog/internal/domain"
)

type CategoryRepo struct{ db *gorm.DB }

func NewCategoryRepo(db *gorm.DB) *CategoryRepo { return &CategoryRepo{db: db} }

var categoryUnique = []uniqueTarget{{"idx_categories_name", domain.ErrDuplicateName}}

func (r *CategoryRepo) List(ctx context.Context) ([]domain.Category, error) {
	var cs []domain.Category
	if err := r.db.WithContext(ctx).Order("name").Find(&cs).Error; err != nil {
		return nil, err
	}
	return cs, nil
}

func (r *CategoryRepo) FindByID(ctx context.Context, id uint) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CategoryRepo) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	var c domain.Category
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&c).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

// FindWithBrands 连同直接子 Brand 一起加载（删除前检查用）
func (r *CategoryRepo) FindWithBrands(ctx context.Context, id uint) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).
		Preload("Brands", func(tx *gorm.DB) *gorm.DB { return tx.Order("id") }).
		First(&c, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *domain.Category) error {
	err := r.db.WithContext(ctx).Omit("Brands").Create(c).Error
	return translate(err, nil, domain.ErrDuplicateName, categoryUnique...)
}

func (r *CategoryRepo) Update(ctx context.Context, c *domain.Category) error {
	err := r.db.WithContext(ctx).Omit("Brands").Save(c).Error
	return translate(err, nil, domain.ErrDuplicateName, categoryUnique...)
}

func (r *CategoryRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Category{}, id)
	if res.Error != nil {
		return translate(res.Error, domain.ErrHasDependents, res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *CategoryRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Category{}).Count(&n).Error
	return n, err
}

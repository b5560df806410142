package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"perfume-catalog/internal/domain"
)

type PerfumeRepo struct{ db *gorm.DB }

func NewPerfumeRepo(db *gorm.DB) *PerfumeRepo { return &PerfumeRepo{db: db} }

// base 预加载 Brand 及其 Category，用于组装摘要
func (r *PerfumeRepo) base(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&domain.Perfume{}).Preload("Brand.Category")
}

func (r *PerfumeRepo) List(ctx context.Context) ([]domain.Perfume, error) {
	return r.find(r.base(ctx))
}

func (r *PerfumeRepo) ListByBrand(ctx context.Context, brandID uint) ([]domain.Perfume, error) {
	return r.find(r.base(ctx).Where("perfumes.brand_id = ?", brandID))
}

func (r *PerfumeRepo) ListByCategory(ctx context.Context, categoryID uint) ([]domain.Perfume, error) {
	q := r.base(ctx).
		Joins("JOIN brands ON brands.id = perfumes.brand_id").
		Where("brands.category_id = ?", categoryID)
	return r.find(q)
}

func (r *PerfumeRepo) FindByID(ctx context.Context, id uint) (*domain.Perfume, error) {
	var p domain.Perfume
	if err := r.base(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

// Search 所有条件可选；文本匹配大小写不敏感，编号区间为闭区间
func (r *PerfumeRepo) Search(ctx context.Context, f domain.PerfumeFilter) ([]domain.Perfume, error) {
	q := r.base(ctx).Joins("JOIN brands ON brands.id = perfumes.brand_id")
	if f.SearchTerm != nil {
		like := "%" + strings.ToLower(*f.SearchTerm) + "%"
		q = q.Where("LOWER(perfumes.name) LIKE ? OR LOWER(brands.name) LIKE ?", like, like)
	}
	if f.BrandName != nil {
		q = q.Where("LOWER(brands.name) LIKE ?", "%"+strings.ToLower(*f.BrandName)+"%")
	}
	if f.MinNumber != nil {
		q = q.Where("perfumes.number >= ?", *f.MinNumber)
	}
	if f.MaxNumber != nil {
		q = q.Where("perfumes.number <= ?", *f.MaxNumber)
	}
	return r.find(q)
}

func (r *PerfumeRepo) find(q *gorm.DB) ([]domain.Perfume, error) {
	var ps []domain.Perfume
	if err := q.Order("perfumes.id").Find(&ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}

func (r *PerfumeRepo) Create(ctx context.Context, p *domain.Perfume) error {
	return translate(r.db.WithContext(ctx).Omit("Brand").Create(p).Error, domain.ErrReferenceNotFound, nil)
}

func (r *PerfumeRepo) Update(ctx context.Context, p *domain.Perfume) error {
	return translate(r.db.WithContext(ctx).Omit("Brand").Save(p).Error, domain.ErrReferenceNotFound, nil)
}

func (r *PerfumeRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&domain.Perfume{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PerfumeRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Perfume{}).Count(&n).Error
	return n, err
}

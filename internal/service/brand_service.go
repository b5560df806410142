package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"perfume-catalog/internal/domain"
)

type BrandInput struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Description string `json:"description" binding:"max=1000"`
	ImageURL    string `json:"imageUrl" binding:"max=500"`
	CategoryID  uint   `json:"categoryId" binding:"required"`
}

func (in *BrandInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
}

type BrandView struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ImageURL     string `json:"imageUrl"`
	CategoryID   uint   `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}

func NewBrandView(b domain.Brand) BrandView {
	return BrandView{
		ID:           b.ID,
		Name:         b.Name,
		Description:  b.Description,
		ImageURL:     b.ImageURL,
		CategoryID:   b.CategoryID,
		CategoryName: b.Category.Name,
	}
}

func brandViews(bs []domain.Brand) []BrandView {
	out := make([]BrandView, 0, len(bs))
	for _, b := range bs {
		out = append(out, NewBrandView(b))
	}
	return out
}

type BrandService struct {
	brands     domain.BrandRepository
	categories domain.CategoryRepository
}

func NewBrandService(brands domain.BrandRepository, categories domain.CategoryRepository) *BrandService {
	return &BrandService{brands: brands, categories: categories}
}

// List categoryID 为 0 时返回全部
func (s *BrandService) List(ctx context.Context, categoryID uint) ([]BrandView, error) {
	var (
		bs  []domain.Brand
		err error
	)
	if categoryID == 0 {
		bs, err = s.brands.List(ctx)
	} else {
		bs, err = s.brands.ListByCategory(ctx, categoryID)
	}
	if err != nil {
		return nil, err
	}
	return brandViews(bs), nil
}

func (s *BrandService) Get(ctx context.Context, id uint) (BrandView, error) {
	b, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return BrandView{}, fmt.Errorf("brand %d: %w", id, err)
	}
	return NewBrandView(*b), nil
}

func (s *BrandService) Create(ctx context.Context, in BrandInput) (BrandView, error) {
	in.normalize()
	if err := check(in); err != nil {
		return BrandView{}, err
	}
	cat, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return BrandView{}, err
	}
	if err := s.ensureNameFree(ctx, in.Name, in.CategoryID, 0); err != nil {
		return BrandView{}, err
	}
	b := &domain.Brand{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		CategoryID:  cat.ID,
	}
	if err := s.brands.Create(ctx, b); err != nil {
		return BrandView{}, err
	}
	b.Category = *cat
	return NewBrandView(*b), nil
}

// Update 可以换分类，唯一性按新分类判断
func (s *BrandService) Update(ctx context.Context, id uint, in BrandInput) (BrandView, error) {
	in.normalize()
	if err := check(in); err != nil {
		return BrandView{}, err
	}
	b, err := s.brands.FindByID(ctx, id)
	if err != nil {
		return BrandView{}, fmt.Errorf("brand %d: %w", id, err)
	}
	cat, err := s.resolveCategory(ctx, in.CategoryID)
	if err != nil {
		return BrandView{}, err
	}
	if err := s.ensureNameFree(ctx, in.Name, in.CategoryID, id); err != nil {
		return BrandView{}, err
	}
	b.Name, b.Description, b.ImageURL, b.CategoryID = in.Name, in.Description, in.ImageURL, cat.ID
	if err := s.brands.Update(ctx, b); err != nil {
		return BrandView{}, err
	}
	b.Category = *cat
	return NewBrandView(*b), nil
}

func (s *BrandService) Delete(ctx context.Context, id uint) error {
	b, err := s.brands.FindWithPerfumes(ctx, id)
	if err != nil {
		return fmt.Errorf("brand %d: %w", id, err)
	}
	if len(b.Perfumes) > 0 {
		return fmt.Errorf("brand %q still has %d perfume(s): %w", b.Name, len(b.Perfumes), domain.ErrHasDependents)
	}
	return s.brands.Delete(ctx, id)
}

func (s *BrandService) resolveCategory(ctx context.Context, id uint) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("category %d: %w", id, domain.ErrReferenceNotFound)
	}
	return c, err
}

func (s *BrandService) ensureNameFree(ctx context.Context, name string, categoryID, self uint) error {
	existing, err := s.brands.FindByNameInCategory(ctx, name, categoryID)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return fmt.Errorf("brand %q in category %d: %w", name, categoryID, domain.ErrDuplicateName)
	}
	return nil
}

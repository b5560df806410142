package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"perfume-catalog/internal/domain"
)

type CategoryInput struct {
	Name        string `json:"name" binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"max=500"`
	Color       string `json:"color" binding:"required,max=20"`
}

func (in *CategoryInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Color = strings.TrimSpace(in.Color)
}

type CategoryService struct {
	categories domain.CategoryRepository
}

func NewCategoryService(categories domain.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *CategoryService) Get(ctx context.Context, id uint) (*domain.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("category %d: %w", id, err)
	}
	return c, nil
}

func (s *CategoryService) Create(ctx context.Context, in CategoryInput) (*domain.Category, error) {
	in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}
	c := &domain.Category{Name: in.Name, Description: in.Description, Color: in.Color}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update 全量替换；名称不变时允许
func (s *CategoryService) Update(ctx context.Context, id uint, in CategoryInput) (*domain.Category, error) {
	in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureNameFree(ctx, in.Name, id); err != nil {
		return nil, err
	}
	c.Name, c.Description, c.Color = in.Name, in.Description, in.Color
	if err := s.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete 仍有品牌时拒绝，不做级联
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	c, err := s.categories.FindWithBrands(ctx, id)
	if err != nil {
		return fmt.Errorf("category %d: %w", id, err)
	}
	if len(c.Brands) > 0 {
		return fmt.Errorf("category %q still has %d brand(s): %w", c.Name, len(c.Brands), domain.ErrHasDependents)
	}
	return s.categories.Delete(ctx, id)
}

func (s *CategoryService) ensureNameFree(ctx context.Context, name string, self uint) error {
	existing, err := s.categories.FindByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID != self:
		return fmt.Errorf("category %q: %w", name, domain.ErrDuplicateName)
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"perfume-catalog/internal/domain"
)

type PerfumeInput struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Number  int    `json:"number" binding:"required,gt=0"`
	BrandID uint   `json:"brandId" binding:"required"`
}

// SearchInput 所有字段可选；空白串等同未提供
type SearchInput struct {
	SearchTerm *string `json:"searchTerm"`
	BrandName  *string `json:"brandName"`
	MinNumber  *int    `json:"minNumber"`
	MaxNumber  *int    `json:"maxNumber"`
}

func (in SearchInput) Filter() domain.PerfumeFilter {
	return domain.PerfumeFilter{
		SearchTerm: blankToNil(in.SearchTerm),
		BrandName:  blankToNil(in.BrandName),
		MinNumber:  in.MinNumber,
		MaxNumber:  in.MaxNumber,
	}
}

type PerfumeView struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	Number       int    `json:"number"`
	BrandID      uint   `json:"brandId"`
	BrandName    string `json:"brandName"`
	CategoryID   uint   `json:"categoryId"`
	CategoryName string `json:"categoryName"`
}

func NewPerfumeView(p domain.Perfume) PerfumeView {
	return PerfumeView{
		ID:           p.ID,
		Name:         p.Name,
		Number:       p.Number,
		BrandID:      p.BrandID,
		BrandName:    p.Brand.Name,
		CategoryID:   p.Brand.CategoryID,
		CategoryName: p.Brand.Category.Name,
	}
}

func perfumeViews(ps []domain.Perfume) []PerfumeView {
	out := make([]PerfumeView, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewPerfumeView(p))
	}
	return out
}

type PerfumeService struct {
	perfumes domain.PerfumeRepository
	brands   domain.BrandRepository
}

func NewPerfumeService(perfumes domain.PerfumeRepository, brands domain.BrandRepository) *PerfumeService {
	return &PerfumeService{perfumes: perfumes, brands: brands}
}

// List brandID 优先于 categoryID；都为 0 时返回全部
func (s *PerfumeService) List(ctx context.Context, brandID, categoryID uint) ([]PerfumeView, error) {
	var (
		ps  []domain.Perfume
		err error
	)
	switch {
	case brandID != 0:
		ps, err = s.perfumes.ListByBrand(ctx, brandID)
	case categoryID != 0:
		ps, err = s.perfumes.ListByCategory(ctx, categoryID)
	default:
		ps, err = s.perfumes.List(ctx)
	}
	if err != nil {
		return nil, err
	}
	return perfumeViews(ps), nil
}

func (s *PerfumeService) Get(ctx context.Context, id uint) (PerfumeView, error) {
	p, err := s.perfumes.FindByID(ctx, id)
	if err != nil {
		return PerfumeView{}, fmt.Errorf("perfume %d: %w", id, err)
	}
	return NewPerfumeView(*p), nil
}

func (s *PerfumeService) Search(ctx context.Context, in SearchInput) ([]PerfumeView, error) {
	f := in.Filter()
	if f.MinNumber != nil && f.MaxNumber != nil && *f.MinNumber > *f.MaxNumber {
		return []PerfumeView{}, nil
	}
	ps, err := s.perfumes.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	return perfumeViews(ps), nil
}

func (s *PerfumeService) Create(ctx context.Context, in PerfumeInput) (PerfumeView, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return PerfumeView{}, err
	}
	b, err := s.resolveBrand(ctx, in.BrandID)
	if err != nil {
		return PerfumeView{}, err
	}
	p := &domain.Perfume{Name: in.Name, Number: in.Number, BrandID: b.ID}
	if err := s.perfumes.Create(ctx, p); err != nil {
		return PerfumeView{}, err
	}
	p.Brand = *b
	return NewPerfumeView(*p), nil
}

func (s *PerfumeService) Update(ctx context.Context, id uint, in PerfumeInput) (PerfumeView, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return PerfumeView{}, err
	}
	p, err := s.perfumes.FindByID(ctx, id)
	if err != nil {
		return PerfumeView{}, fmt.Errorf("perfume %d: %w", id, err)
	}
	b, err := s.resolveBrand(ctx, in.BrandID)
	if err != nil {
		return PerfumeView{}, err
	}
	p.Name, p.Number, p.BrandID = in.Name, in.Number, b.ID
	p.Brand = domain.Brand{}
	if err := s.perfumes.Update(ctx, p); err != nil {
		return PerfumeView{}, err
	}
	p.Brand = *b
	return NewPerfumeView(*p), nil
}

func (s *PerfumeService) Delete(ctx context.Context, id uint) error {
	if err := s.perfumes.Delete(ctx, id); err != nil {
		return fmt.Errorf("perfume %d: %w", id, err)
	}
	return nil
}

func (s *PerfumeService) resolveBrand(ctx context.Context, id uint) (*domain.Brand, error) {
	b, err := s.brands.FindByID(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("brand %d: %w", id, domain.ErrReferenceNotFound)
	}
	return b, err
}

package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"perfume-catalog/internal/domain"
)

type Stats struct {
	Categories int64 `json:"totalCategories"`
	Brands     int64 `json:"totalBrands"`
	Perfumes   int64 `json:"totalPerfumes"`
	Users      int64 `json:"totalUsers"`
}

// DashboardService 并发请求合并为一次统计，不做缓存
type DashboardService struct {
	categories domain.CategoryRepository
	brands     domain.BrandRepository
	perfumes   domain.PerfumeRepository
	users      domain.UserRepository
	sf         singleflight.Group
}

func NewDashboardService(
	categories domain.CategoryRepository,
	brands domain.BrandRepository,
	perfumes domain.PerfumeRepository,
	users domain.UserRepository,
) *DashboardService {
	return &DashboardService{categories: categories, brands: brands, perfumes: perfumes, users: users}
}

func (s *DashboardService) Stats(ctx context.Context) (Stats, error) {
	v, err, _ := s.sf.Do("stats", func() (any, error) {
		var st Stats
		counters := []struct {
			name string
			dst  *int64
			fn   func(context.Context) (int64, error)
		}{
			{"categories", &st.Categories, s.categories.Count},
			{"brands", &st.Brands, s.brands.Count},
			{"perfumes", &st.Perfumes, s.perfumes.Count},
			{"users", &st.Users, s.users.Count},
		}
		for _, c := range counters {
			n, err := c.fn(ctx)
			if err != nil {
				return nil, fmt.Errorf("count %s: %w", c.name, err)
			}
			*c.dst = n
		}
		return st, nil
	})
	if err != nil {
		return Stats{}, err
	}
	return v.(Stats), nil
}

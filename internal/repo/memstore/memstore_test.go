package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume-catalog/internal/domain"
)

func seed(t *testing.T) (*Store, domain.Category, domain.Brand) {
	t.Helper()
	ctx := context.Background()
	s := New()
	c := domain.Category{Name: "Woody", Color: "#8B4513"}
	require.NoError(t, s.Categories().Create(ctx, &c))
	b := domain.Brand{Name: "Oakmoss", CategoryID: c.ID}
	require.NoError(t, s.Brands().Create(ctx, &b))
	return s, c, b
}

func TestCategory_UniqueAndRestrict(t *testing.T) {
	ctx := context.Background()
	s, c, _ := seed(t)

	dup := domain.Category{Name: "Woody", Color: "#000"}
	assert.ErrorIs(t, s.Categories().Create(ctx, &dup), domain.ErrDuplicateName)
	assert.ErrorIs(t, s.Categories().Delete(ctx, c.ID), domain.ErrHasDependents)
	assert.ErrorIs(t, s.Categories().Delete(ctx, 999), domain.ErrNotFound)

	got, err := s.Categories().FindWithBrands(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got.Brands, 1)
	assert.Equal(t, "Oakmoss", got.Brands[0].Name)
}

func TestBrand_ScopedUniqueness(t *testing.T) {
	ctx := context.Background()
	s, c, _ := seed(t)

	other := domain.Category{Name: "Floral", Color: "#f0f"}
	require.NoError(t, s.Categories().Create(ctx, &other))

	same := domain.Brand{Name: "Oakmoss", CategoryID: c.ID}
	assert.ErrorIs(t, s.Brands().Create(ctx, &same), domain.ErrDuplicateName)

	elsewhere := domain.Brand{Name: "Oakmoss", CategoryID: other.ID}
	assert.NoError(t, s.Brands().Create(ctx, &elsewhere))

	orphan := domain.Brand{Name: "Ghost", CategoryID: 42}
	assert.ErrorIs(t, s.Brands().Create(ctx, &orphan), domain.ErrReferenceNotFound)
}

func TestPerfume_SearchAndPreload(t *testing.T) {
	ctx := context.Background()
	s, c, b := seed(t)

	for i, name := range []string{"No.5", "Night", "Nectar"} {
		p := domain.Perfume{Name: name, Number: (i + 1) * 10, BrandID: b.ID}
		require.NoError(t, s.Perfumes().Create(ctx, &p))
	}

	term := "n"
	minN := 15
	got, err := s.Perfumes().Search(ctx, domain.PerfumeFilter{SearchTerm: &term, MinNumber: &minN})
	require.NoError(t, err)
	// 编号下限过滤掉 No.5
	require.Len(t, got, 2)
	assert.Equal(t, "Night", got[0].Name)
	assert.Equal(t, "Oakmoss", got[0].Brand.Name)
	assert.Equal(t, "Woody", got[0].Brand.Category.Name)

	byCat, err := s.Perfumes().ListByCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, byCat, 3)

	assert.ErrorIs(t, s.Brands().Delete(ctx, b.ID), domain.ErrHasDependents)
}

func TestUser_UniqueColumns(t *testing.T) {
	ctx := context.Background()
	s := New()
	u := domain.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, s.Users().Create(ctx, &u))

	dupName := domain.User{Username: "alice", Email: "x@example.com"}
	assert.ErrorIs(t, s.Users().Create(ctx, &dupName), domain.ErrDuplicateUsername)

	dupMail := domain.User{Username: "bob", Email: "alice@example.com"}
	assert.ErrorIs(t, s.Users().Create(ctx, &dupMail), domain.ErrDuplicateEmail)

	u.Email = "alice@new.example.com"
	assert.NoError(t, s.Users().Update(ctx, &u))

	n, err := s.Users().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

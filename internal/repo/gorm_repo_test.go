package repo

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"perfume-catalog/internal/domain"
)

// sqlRecorder 收集 DryRun 下生成的 SQL（参数已内联）
type sqlRecorder struct {
	mu   sync.Mutex
	stmt []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface      { return r }
func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	r.mu.Lock()
	r.stmt = append(r.stmt, sql)
	r.mu.Unlock()
}

func (r *sqlRecorder) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.stmt
	r.stmt = nil
	return out
}

// dryDB 不连接数据库，只生成 postgres 方言的 SQL
func dryDB(t *testing.T) (*gorm.DB, *sqlRecorder) {
	t.Helper()
	rec := &sqlRecorder{}
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=127.0.0.1 user=test dbname=test sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true, Logger: rec})
	require.NoError(t, err)
	return db, rec
}

func onlyStmt(t *testing.T, rec *sqlRecorder) string {
	t.Helper()
	stmts := rec.take()
	require.Len(t, stmts, 1, stmts)
	return stmts[0]
}

func TestPerfumeRepo_SearchSQL(t *testing.T) {
	ctx := context.Background()
	db, rec := dryDB(t)
	r := NewPerfumeRepo(db)

	term, brand := "No.5", "CHANEL"
	lo, hi := 1, 10
	_, err := r.Search(ctx, domain.PerfumeFilter{SearchTerm: &term, BrandName: &brand, MinNumber: &lo, MaxNumber: &hi})
	require.NoError(t, err)

	sql := onlyStmt(t, rec)
	for _, want := range []string{
		`FROM "perfumes" JOIN brands ON brands.id = perfumes.brand_id`,
		`LOWER(perfumes.name) LIKE '%no.5%' OR LOWER(brands.name) LIKE '%no.5%'`,
		`LOWER(brands.name) LIKE '%chanel%'`,
		`perfumes.number >= 1`,
		`perfumes.number <= 10`,
		`ORDER BY perfumes.id`,
	} {
		assert.Contains(t, sql, want)
	}

	// 无条件时不加 WHERE，但仍要连 brands
	_, err = r.Search(ctx, domain.PerfumeFilter{})
	require.NoError(t, err)
	sql = onlyStmt(t, rec)
	assert.Contains(t, sql, "JOIN brands")
	assert.NotContains(t, sql, "WHERE")
}

func TestPerfumeRepo_ListByCategorySQL(t *testing.T) {
	db, rec := dryDB(t)
	_, err := NewPerfumeRepo(db).ListByCategory(context.Background(), 3)
	require.NoError(t, err)

	sql := onlyStmt(t, rec)
	assert.Contains(t, sql, "JOIN brands ON brands.id = perfumes.brand_id")
	assert.Contains(t, sql, "brands.category_id = 3")
	assert.Contains(t, sql, "ORDER BY perfumes.id")
}

func TestBrandRepo_ListByCategorySQL(t *testing.T) {
	db, rec := dryDB(t)
	_, err := NewBrandRepo(db).ListByCategory(context.Background(), 3)
	require.NoError(t, err)

	sql := onlyStmt(t, rec)
	assert.Contains(t, sql, `FROM "brands" WHERE category_id = 3`)
	assert.Contains(t, sql, "ORDER BY name")
}

func TestBrandRepo_UpdateLeavesCategoryAlone(t *testing.T) {
	db, rec := dryDB(t)
	b := &domain.Brand{
		ID: 7, Name: "Chanel", CategoryID: 2,
		Category: domain.Category{ID: 1, Name: "Floral", Color: "#f0f"},
	}
	require.NoError(t, NewBrandRepo(db).Update(context.Background(), b))

	stmts := rec.take()
	require.NotEmpty(t, stmts)
	for _, s := range stmts {
		assert.NotContains(t, s, `"categories"`, "preloaded category must not be written back")
		assert.NotContains(t, s, `"perfumes"`)
	}
	assert.Contains(t, stmts[0], `UPDATE "brands" SET`)
	assert.Contains(t, stmts[0], `"category_id"=2`)
	assert.Contains(t, stmts[0], `"id" = 7`)
}

func TestCategoryRepo_DeleteMissing(t *testing.T) {
	db, rec := dryDB(t)
	// DryRun 不影响行数，走的是“未找到”分支
	err := NewCategoryRepo(db).Delete(context.Background(), 5)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	sql := onlyStmt(t, rec)
	assert.True(t, strings.HasPrefix(sql, `DELETE FROM "categories"`), sql)
	assert.Contains(t, sql, `"categories"."id" = 5`)
}

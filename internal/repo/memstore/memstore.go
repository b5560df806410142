// Package memstore 进程内存储，实现与 gorm 仓储相同的接口与约束
// （唯一索引、外键 RESTRICT），用于 db.driver=memory 和测试。
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"perfume-catalog/internal/domain"
)

type Store struct {
	mu         sync.RWMutex
	now        func() time.Time
	seq        map[string]uint
	categories map[uint]domain.Category
	brands     map[uint]domain.Brand
	perfumes   map[uint]domain.Perfume
	users      map[uint]domain.User
}

func New() *Store {
	return &Store{
		now:        time.Now,
		seq:        map[string]uint{},
		categories: map[uint]domain.Category{},
		brands:     map[uint]domain.Brand{},
		perfumes:   map[uint]domain.Perfume{},
		users:      map[uint]domain.User{},
	}
}

func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s} }
func (s *Store) Brands() *BrandRepo        { return &BrandRepo{s} }
func (s *Store) Perfumes() *PerfumeRepo    { return &PerfumeRepo{s} }
func (s *Store) Users() *UserRepo          { return &UserRepo{s} }

func (s *Store) next(table string) uint {
	s.seq[table]++
	return s.seq[table]
}

func sortedIDs[T any](m map[uint]T) []uint {
	ids := make([]uint, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ---------- categories ----------

type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.Category, 0, len(r.s.categories))
	for _, id := range sortedIDs(r.s.categories) {
		out = append(out, r.s.categories[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *CategoryRepo) FindByID(_ context.Context, id uint) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (r *CategoryRepo) FindByName(_ context.Context, name string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range sortedIDs(r.s.categories) {
		if c := r.s.categories[id]; c.Name == name {
			return &c, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *CategoryRepo) FindWithBrands(_ context.Context, id uint) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	c.Brands = nil
	for _, bid := range sortedIDs(r.s.brands) {
		if b := r.s.brands[bid]; b.CategoryID == id {
			c.Brands = append(c.Brands, b)
		}
	}
	return &c, nil
}

func (r *CategoryRepo) Create(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.categoryNameTaken(c.Name, 0) {
		return domain.ErrDuplicateName
	}
	c.ID = r.s.next("categories")
	c.CreatedAt, c.UpdatedAt = r.s.now(), r.s.now()
	stored := *c
	stored.Brands = nil
	r.s.categories[c.ID] = stored
	return nil
}

func (r *CategoryRepo) Update(_ context.Context, c *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[c.ID]; !ok {
		return domain.ErrNotFound
	}
	if r.s.categoryNameTaken(c.Name, c.ID) {
		return domain.ErrDuplicateName
	}
	c.UpdatedAt = r.s.now()
	stored := *c
	stored.Brands = nil
	r.s.categories[c.ID] = stored
	return nil
}

func (r *CategoryRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.categories[id]; !ok {
		return domain.ErrNotFound
	}
	for _, b := range r.s.brands {
		if b.CategoryID == id {
			return domain.ErrHasDependents
		}
	}
	delete(r.s.categories, id)
	return nil
}

func (r *CategoryRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.categories)), nil
}

func (s *Store) categoryNameTaken(name string, self uint) bool {
	for id, c := range s.categories {
		if id != self && c.Name == name {
			return true
		}
	}
	return false
}

// ---------- brands ----------

type BrandRepo struct{ s *Store }

// withCategory 模拟 Preload("Category")，调用方持有读锁
func (s *Store) withCategory(b domain.Brand) domain.Brand {
	b.Category = s.categories[b.CategoryID]
	b.Perfumes = nil
	return b
}

func (r *BrandRepo) list(match func(domain.Brand) bool) []domain.Brand {
	out := []domain.Brand{}
	for _, id := range sortedIDs(r.s.brands) {
		if b := r.s.brands[id]; match(b) {
			out = append(out, r.s.withCategory(b))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *BrandRepo) List(_ context.Context) ([]domain.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(domain.Brand) bool { return true }), nil
}

func (r *BrandRepo) ListByCategory(_ context.Context, categoryID uint) ([]domain.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(b domain.Brand) bool { return b.CategoryID == categoryID }), nil
}

func (r *BrandRepo) FindByID(_ context.Context, id uint) (*domain.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.brands[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b = r.s.withCategory(b)
	return &b, nil
}

func (r *BrandRepo) FindByNameInCategory(_ context.Context, name string, categoryID uint) (*domain.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range sortedIDs(r.s.brands) {
		if b := r.s.brands[id]; b.Name == name && b.CategoryID == categoryID {
			return &b, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *BrandRepo) FindWithPerfumes(_ context.Context, id uint) (*domain.Brand, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.brands[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	b = r.s.withCategory(b)
	for _, pid := range sortedIDs(r.s.perfumes) {
		if p := r.s.perfumes[pid]; p.BrandID == id {
			b.Perfumes = append(b.Perfumes, p)
		}
	}
	return &b, nil
}

func (r *BrandRepo) Create(_ context.Context, b *domain.Brand) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkBrand(b, 0); err != nil {
		return err
	}
	b.ID = r.s.next("brands")
	b.CreatedAt, b.UpdatedAt = r.s.now(), r.s.now()
	r.s.brands[b.ID] = stripBrand(*b)
	return nil
}

func (r *BrandRepo) Update(_ context.Context, b *domain.Brand) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.brands[b.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.s.checkBrand(b, b.ID); err != nil {
		return err
	}
	b.UpdatedAt = r.s.now()
	r.s.brands[b.ID] = stripBrand(*b)
	return nil
}

func (s *Store) checkBrand(b *domain.Brand, self uint) error {
	if _, ok := s.categories[b.CategoryID]; !ok {
		return domain.ErrReferenceNotFound
	}
	for id, other := range s.brands {
		if id != self && other.CategoryID == b.CategoryID && other.Name == b.Name {
			return domain.ErrDuplicateName
		}
	}
	return nil
}

func stripBrand(b domain.Brand) domain.Brand {
	b.Category = domain.Category{}
	b.Perfumes = nil
	return b
}

func (r *BrandRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.brands[id]; !ok {
		return domain.ErrNotFound
	}
	for _, p := range r.s.perfumes {
		if p.BrandID == id {
			return domain.ErrHasDependents
		}
	}
	delete(r.s.brands, id)
	return nil
}

func (r *BrandRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.brands)), nil
}

// ---------- perfumes ----------

type PerfumeRepo struct{ s *Store }

// withBrand 模拟 Preload("Brand.Category")，调用方持有读锁
func (s *Store) withBrand(p domain.Perfume) domain.Perfume {
	p.Brand = s.withCategory(s.brands[p.BrandID])
	return p
}

func (r *PerfumeRepo) list(match func(domain.Perfume) bool) []domain.Perfume {
	out := []domain.Perfume{}
	for _, id := range sortedIDs(r.s.perfumes) {
		p := r.s.withBrand(r.s.perfumes[id])
		if match(p) {
			out = append(out, p)
		}
	}
	return out
}

func (r *PerfumeRepo) List(_ context.Context) ([]domain.Perfume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(domain.Perfume) bool { return true }), nil
}

func (r *PerfumeRepo) ListByBrand(_ context.Context, brandID uint) ([]domain.Perfume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(p domain.Perfume) bool { return p.BrandID == brandID }), nil
}

func (r *PerfumeRepo) ListByCategory(_ context.Context, categoryID uint) ([]domain.Perfume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(p domain.Perfume) bool { return p.Brand.CategoryID == categoryID }), nil
}

func (r *PerfumeRepo) FindByID(_ context.Context, id uint) (*domain.Perfume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.perfumes[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	p = r.s.withBrand(p)
	return &p, nil
}

func (r *PerfumeRepo) Search(_ context.Context, f domain.PerfumeFilter) ([]domain.Perfume, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.list(func(p domain.Perfume) bool { return matches(p, f) }), nil
}

func matches(p domain.Perfume, f domain.PerfumeFilter) bool {
	contains := func(s, sub string) bool {
		return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
	}
	if f.SearchTerm != nil && !contains(p.Name, *f.SearchTerm) && !contains(p.Brand.Name, *f.SearchTerm) {
		return false
	}
	if f.BrandName != nil && !contains(p.Brand.Name, *f.BrandName) {
		return false
	}
	if f.MinNumber != nil && p.Number < *f.MinNumber {
		return false
	}
	if f.MaxNumber != nil && p.Number > *f.MaxNumber {
		return false
	}
	return true
}

func (r *PerfumeRepo) Create(_ context.Context, p *domain.Perfume) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.brands[p.BrandID]; !ok {
		return domain.ErrReferenceNotFound
	}
	p.ID = r.s.next("perfumes")
	p.CreatedAt, p.UpdatedAt = r.s.now(), r.s.now()
	stored := *p
	stored.Brand = domain.Brand{}
	r.s.perfumes[p.ID] = stored
	return nil
}

func (r *PerfumeRepo) Update(_ context.Context, p *domain.Perfume) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.perfumes[p.ID]; !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.s.brands[p.BrandID]; !ok {
		return domain.ErrReferenceNotFound
	}
	p.UpdatedAt = r.s.now()
	stored := *p
	stored.Brand = domain.Brand{}
	r.s.perfumes[p.ID] = stored
	return nil
}

func (r *PerfumeRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.perfumes[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.perfumes, id)
	return nil
}

func (r *PerfumeRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.perfumes)), nil
}

// ---------- users ----------

type UserRepo struct{ s *Store }

func (r *UserRepo) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]domain.User, 0, len(r.s.users))
	for _, id := range sortedIDs(r.s.users) {
		out = append(out, r.s.users[id])
	}
	return out, nil
}

func (r *UserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) findBy(match func(domain.User) bool) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, id := range sortedIDs(r.s.users) {
		if u := r.s.users[id]; match(u) {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Username == username })
}

func (r *UserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.findBy(func(u domain.User) bool { return u.Email == email })
}

func (r *UserRepo) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.checkUser(u, 0); err != nil {
		return err
	}
	u.ID = r.s.next("users")
	u.CreatedAt, u.UpdatedAt = r.s.now(), r.s.now()
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) Update(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	if err := r.s.checkUser(u, u.ID); err != nil {
		return err
	}
	u.UpdatedAt = r.s.now()
	r.s.users[u.ID] = *u
	return nil
}

func (s *Store) checkUser(u *domain.User, self uint) error {
	for id, other := range s.users {
		if id == self {
			continue
		}
		if other.Username == u.Username {
			return domain.ErrDuplicateUsername
		}
		if other.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) Count(_ context.Context) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return int64(len(r.s.users)), nil
}

var (
	_ domain.CategoryRepository = (*CategoryRepo)(nil)
	_ domain.BrandRepository    = (*BrandRepo)(nil)
	_ domain.PerfumeRepository  = (*PerfumeRepo)(nil)
	_ domain.UserRepository     = (*UserRepo)(nil)
)

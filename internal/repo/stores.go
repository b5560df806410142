package repo

import (
	"gorm.io/gorm"

	"perfume-catalog/internal/domain"
	"perfume-catalog/internal/repo/memstore"
)

// Stores 一套仓储；由 db.driver 决定实现
type Stores struct {
	Categories domain.CategoryRepository
	Brands     domain.BrandRepository
	Perfumes   domain.PerfumeRepository
	Users      domain.UserRepository
}

func GormStores(db *gorm.DB) Stores {
	return Stores{
		Categories: NewCategoryRepo(db),
		Brands:     NewBrandRepo(db),
		Perfumes:   NewPerfumeRepo(db),
		Users:      NewUserRepo(db),
	}
}

// MemoryStores 进程内实现，重启即丢
func MemoryStores() Stores {
	s := memstore.New()
	return Stores{
		Categories: s.Categories(),
		Brands:     s.Brands(),
		Perfumes:   s.Perfumes(),
		Users:      s.Users(),
	}
}

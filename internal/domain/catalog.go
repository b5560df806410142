package domain

import (
	"context"
	"time"
)

// Category 顶层分类，名称全局唯一
type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:50;not null;uniqueIndex:idx_categories_name" json:"name"`
	Description string    `gorm:"size:500" json:"description"`
	Color       string    `gorm:"size:20;not null" json:"color"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// 仅在 FindWithBrands 中加载；外键不级联删除
	Brands []Brand `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Category) TableName() string { return "categories" }

// Brand 名称在所属 Category 内唯一
type Brand struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null;uniqueIndex:idx_brands_category_name,priority:2" json:"name"`
	Description string    `gorm:"size:1000" json:"description"`
	ImageURL    string    `gorm:"size:500" json:"imageUrl"`
	CategoryID  uint      `gorm:"not null;uniqueIndex:idx_brands_category_name,priority:1" json:"categoryId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Category Category  `gorm:"foreignKey:CategoryID" json:"-"`
	Perfumes []Perfume `gorm:"foreignKey:BrandID;constraint:OnDelete:RESTRICT" json:"-"`
}

func (Brand) TableName() string { return "brands" }

// Perfume 叶子实体；Number 是编号不是价格
type Perfume struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null;index" json:"name"`
	Number    int       `gorm:"not null;index" json:"number"`
	BrandID   uint      `gorm:"not null;index" json:"brandId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Brand Brand `gorm:"foreignKey:BrandID" json:"-"`
}

func (Perfume) TableName() string { return "perfumes" }

// PerfumeFilter 搜索条件；nil 表示该字段不做约束
type PerfumeFilter struct {
	SearchTerm *string
	BrandName  *string
	MinNumber  *int
	MaxNumber  *int
}

type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	FindByID(ctx context.Context, id uint) (*Category, error)
	FindByName(ctx context.Context, name string) (*Category, error)
	FindWithBrands(ctx context.Context, id uint) (*Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type BrandRepository interface {
	List(ctx context.Context) ([]Brand, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]Brand, error)
	FindByID(ctx context.Context, id uint) (*Brand, error)
	FindByNameInCategory(ctx context.Context, name string, categoryID uint) (*Brand, error)
	FindWithPerfumes(ctx context.Context, id uint) (*Brand, error)
	Create(ctx context.Context, b *Brand) error
	Update(ctx context.Context, b *Brand) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

type PerfumeRepository interface {
	List(ctx context.Context) ([]Perfume, error)
	ListByBrand(ctx context.Context, brandID uint) ([]Perfume, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]Perfume, error)
	FindByID(ctx context.Context, id uint) (*Perfume, error)
	Search(ctx context.Context, f PerfumeFilter) ([]Perfume, error)
	Create(ctx context.Context, p *Perfume) error
	Update(ctx context.Context, p *Perfume) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

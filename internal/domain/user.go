package domain

import (
	"context"
	"database/sql/driver"
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:50;not null;uniqueIndex:idx_users_username" json:"username"`
	Email        string    `gorm:"size:191;not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash string    `gorm:"size:100;not null" json:"-"`
	Enabled      bool      `gorm:"not null;default:true" json:"enabled"`
	Roles        RoleSet   `gorm:"size:255;not null" json:"roles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// RoleSet 角色集合；入库为逗号分隔的大写名称
type RoleSet []string

func NewRoleSet(roles ...string) RoleSet {
	seen := make(map[string]struct{}, len(roles))
	out := make(RoleSet, 0, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func (s RoleSet) Has(role string) bool {
	for _, r := range s {
		if r == role {
			return true
		}
	}
	return false
}

// HasAny 任一角色命中即返回 true
func (s RoleSet) HasAny(roles ...string) bool {
	for _, r := range roles {
		if s.Has(r) {
			return true
		}
	}
	return false
}

func (s RoleSet) Value() (driver.Value, error) {
	return strings.Join(NewRoleSet(s...), ","), nil
}

func (s *RoleSet) Scan(src any) error {
	var raw string
	switch v := src.(type) {
	case nil:
		*s = RoleSet{}
		return nil
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("roleset: unsupported scan type %T", src)
	}
	*s = NewRoleSet(strings.Split(raw, ",")...)
	return nil
}

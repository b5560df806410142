package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"perfume-catalog/internal/domain"
	"perfume-catalog/pkg/utils"
)

const (
	minPasswordLen = 6
	// bcrypt 只接受 72 字节以内；binding 的 max 按字符计数，多字节密码要再按字节查一次
	maxPasswordBytes = 72
)

var allowedRoles = []string{domain.RoleAdmin, domain.RoleUser}

// UserInput 管理端创建/修改；更新时 password 为空表示保留原密码
type UserInput struct {
	Username string   `json:"username" binding:"required,min=3,max=50"`
	Email    string   `json:"email" binding:"required,email,max=191"`
	Password string   `json:"password" binding:"max=72"`
	Roles    []string `json:"roles"`
	Enabled  *bool    `json:"enabled"`
}

func (in *UserInput) normalize() {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
}

type ProfileInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=191"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

type ResetPasswordInput struct {
	Password string `json:"password" binding:"required,min=6,max=72"`
}

type UserService struct {
	users domain.UserRepository
}

func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id uint) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, err)
	}
	return u, nil
}

func (s *UserService) Create(ctx context.Context, in UserInput) (*domain.User, error) {
	in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}
	if err := passwordRule("password", in.Password); err != nil {
		return nil, err
	}
	roles, err := normalizeRoles(in.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = domain.NewRoleSet(domain.RoleUser)
	}
	if err := s.ensureUnique(ctx, in.Username, in.Email, 0); err != nil {
		return nil, err
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Enabled:      in.Enabled == nil || *in.Enabled,
		Roles:        roles,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Update 空角色、空 enabled 保留原值
func (s *UserService) Update(ctx context.Context, id uint, in UserInput) (*domain.User, error) {
	in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}
	roles, err := normalizeRoles(in.Roles)
	if err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, in.Username, in.Email, id); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Password) != "" {
		if err := passwordRule("password", in.Password); err != nil {
			return nil, err
		}
		if u.PasswordHash, err = utils.HashPassword(in.Password); err != nil {
			return nil, err
		}
	}
	u.Username, u.Email = in.Username, in.Email
	if len(roles) > 0 {
		u.Roles = roles
	}
	if in.Enabled != nil {
		u.Enabled = *in.Enabled
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id uint) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("user %d: %w", id, err)
	}
	return nil
}

func (s *UserService) SetEnabled(ctx context.Context, id uint, enabled bool) (*domain.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	u.Enabled = enabled
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) ResetPassword(ctx context.Context, id uint, in ResetPasswordInput) error {
	if err := check(in); err != nil {
		return err
	}
	if err := passwordRule("password", in.Password); err != nil {
		return err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if u.PasswordHash, err = utils.HashPassword(in.Password); err != nil {
		return err
	}
	return s.users.Update(ctx, u)
}

// CreateAdmin 创建同时拥有 ADMIN 与 USER 角色的启用账号
func (s *UserService) CreateAdmin(ctx context.Context, username, password, email string) (*domain.User, error) {
	return s.Create(ctx, UserInput{
		Username: username,
		Email:    email,
		Password: password,
		Roles:    []string{domain.RoleAdmin, domain.RoleUser},
	})
}

// EnsureAdmin 用户名已存在时什么也不做
func (s *UserService) EnsureAdmin(ctx context.Context, username, password, email string) (bool, error) {
	_, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if _, err := s.CreateAdmin(ctx, username, password, email); err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) ResetPasswordByUsername(ctx context.Context, username string, in ResetPasswordInput) error {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return fmt.Errorf("user %q: %w", username, err)
	}
	return s.ResetPassword(ctx, u.ID, in)
}

// UpdateProfile 用户自己修改用户名/邮箱，唯一性规则与管理端一致
func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*domain.User, error) {
	in.Username, in.Email = strings.TrimSpace(in.Username), strings.TrimSpace(in.Email)
	if err := check(in); err != nil {
		return nil, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, in.Username, in.Email, id); err != nil {
		return nil, err
	}
	u.Username, u.Email = in.Username, in.Email
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserService) ChangePassword(ctx context.Context, id uint, in ChangePasswordInput) error {
	if err := check(in); err != nil {
		return err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(in.CurrentPassword, u.PasswordHash) {
		return fieldError("currentPassword", "is incorrect")
	}
	if err := passwordRule("newPassword", in.NewPassword); err != nil {
		return err
	}
	if u.PasswordHash, err = utils.HashPassword(in.NewPassword); err != nil {
		return err
	}
	return s.users.Update(ctx, u)
}

func (s *UserService) ensureUnique(ctx context.Context, username, email string, self uint) error {
	if u, err := s.users.FindByUsername(ctx, username); err == nil && u.ID != self {
		return fmt.Errorf("username %q: %w", username, domain.ErrDuplicateUsername)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if u, err := s.users.FindByEmail(ctx, email); err == nil && u.ID != self {
		return fmt.Errorf("email %q: %w", email, domain.ErrDuplicateEmail)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// normalizeRoles 只接受 ADMIN / USER
func normalizeRoles(roles []string) (domain.RoleSet, error) {
	rs := domain.NewRoleSet(roles...)
	for _, r := range rs {
		if !domain.RoleSet(allowedRoles).Has(r) {
			return nil, fieldError("roles", fmt.Sprintf("unknown role %q", r))
		}
	}
	return rs, nil
}

func passwordRule(field, pw string) error {
	if len(pw) < minPasswordLen {
		return fieldError(field, fmt.Sprintf("must be at least %d characters", minPasswordLen))
	}
	if len(pw) > maxPasswordBytes {
		return fieldError(field, fmt.Sprintf("must be at most %d bytes", maxPasswordBytes))
	}
	return nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"perfume-catalog/internal/core/auth"
	"perfume-catalog/internal/domain"
	"perfume-catalog/pkg/utils"
)

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterInput struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Email    string `json:"email" binding:"omitempty,email,max=191"`
}

type LoginResult struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
	Message  string   `json:"message"`
}

// Session 认证成功后的用户快照
type Session struct {
	UserID   uint
	Username string
	Email    string
	Roles    domain.RoleSet
}

type AuthService struct {
	users       domain.UserRepository
	userSvc     *UserService
	jwter       *auth.JWTer
	emailDomain string
}

func NewAuthService(users domain.UserRepository, jwter *auth.JWTer, emailDomain string) *AuthService {
	if emailDomain == "" {
		emailDomain = "perfume.local"
	}
	return &AuthService{
		users:       users,
		userSvc:     NewUserService(users),
		jwter:       jwter,
		emailDomain: emailDomain,
	}
}

// Authenticate 用户不存在与密码错误返回同一个错误
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	u, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		utils.BurnPassword(password)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	if !u.Enabled {
		return nil, domain.ErrAccountDisabled
	}
	return &Session{UserID: u.ID, Username: u.Username, Email: u.Email, Roles: u.Roles}, nil
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	sess, err := s.Authenticate(ctx, in.Username, in.Password)
	if err != nil {
		return LoginResult{}, err
	}
	return s.issue(sess, "Login successful")
}

// Register 新用户只有 USER 角色；未填邮箱时用 <username>@<emailDomain>
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (LoginResult, error) {
	in.Username, in.Email = strings.TrimSpace(in.Username), strings.TrimSpace(in.Email)
	if in.Email == "" {
		in.Email = in.Username + "@" + s.emailDomain
	}
	u, err := s.userSvc.Create(ctx, UserInput{
		Username: in.Username,
		Email:    in.Email,
		Password: in.Password,
		Roles:    []string{domain.RoleUser},
	})
	if err != nil {
		return LoginResult{}, err
	}
	return s.issue(&Session{UserID: u.ID, Username: u.Username, Email: u.Email, Roles: u.Roles}, "Registration successful")
}

func (s *AuthService) Validate(token string) bool {
	_, err := s.jwter.Parse(token)
	return err == nil
}

func (s *AuthService) issue(sess *Session, msg string) (LoginResult, error) {
	tok, _, err := s.jwter.Issue(sess.UserID, sess.Username, sess.Roles)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}
	return LoginResult{
		Token:    tok,
		Username: sess.Username,
		Email:    sess.Email,
		Roles:    sess.Roles,
		Message:  msg,
	}, nil
}

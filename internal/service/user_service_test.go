package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perfume-catalog/internal/core/auth"
	"perfume-catalog/internal/domain"
	"perfume-catalog/internal/repo/memstore"
	"perfume-catalog/pkg/utils"
)

func TestUser_CreateRules(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memstore.New().Users())

	u, err := svc.Create(ctx, UserInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSet{domain.RoleUser}, u.Roles)
	assert.True(t, u.Enabled)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, utils.CheckPassword("secret1", u.PasswordHash))

	tests := []struct {
		name string
		in   UserInput
		want error
	}{
		{"duplicate username", UserInput{Username: "alice", Email: "other@example.com", Password: "secret1"}, domain.ErrDuplicateUsername},
		{"duplicate email", UserInput{Username: "bob", Email: "alice@example.com", Password: "secret1"}, domain.ErrDuplicateEmail},
		{"short password", UserInput{Username: "bob", Email: "bob@example.com", Password: "123"}, domain.ErrValidation},
		{"unknown role", UserInput{Username: "bob", Email: "bob@example.com", Password: "secret1", Roles: []string{"root"}}, domain.ErrValidation},
		{"bad email", UserInput{Username: "bob", Email: "nope", Password: "secret1"}, domain.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUser_UpdateKeepsHashOnBlankPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memstore.New().Users())

	u, err := svc.Create(ctx, UserInput{Username: "alice", Email: "alice@example.com", Password: "secret1", Roles: []string{"admin", "user"}})
	require.NoError(t, err)
	hash := u.PasswordHash

	disabled := false
	upd, err := svc.Update(ctx, u.ID, UserInput{Username: "alice2", Email: "alice@example.com", Password: "  ", Enabled: &disabled})
	require.NoError(t, err)
	assert.Equal(t, hash, upd.PasswordHash)
	assert.Equal(t, "alice2", upd.Username)
	assert.False(t, upd.Enabled)
	assert.Equal(t, domain.RoleSet{domain.RoleAdmin, domain.RoleUser}, upd.Roles)

	upd, err = svc.Update(ctx, u.ID, UserInput{Username: "alice2", Email: "alice@example.com", Password: "newpass"})
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("newpass", upd.PasswordHash))

	_, err = svc.Update(ctx, 42, UserInput{Username: "x12", Email: "x@example.com"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUser_ProfileAndPassword(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memstore.New().Users())

	a, err := svc.Create(ctx, UserInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, UserInput{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, a.ID, ProfileInput{Username: "bob", Email: "alice@example.com"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	p, err := svc.UpdateProfile(ctx, a.ID, ProfileInput{Username: "alice", Email: "alice@new.example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", p.Email)

	err = svc.ChangePassword(ctx, a.ID, ChangePasswordInput{CurrentPassword: "wrong", NewPassword: "another1"})
	assert.ErrorIs(t, err, domain.ErrValidation)

	require.NoError(t, svc.ChangePassword(ctx, a.ID, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: "another1"}))
	got, err := svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("another1", got.PasswordHash))

	require.NoError(t, svc.ResetPassword(ctx, a.ID, ResetPasswordInput{Password: "reset12"}))
	got, err = svc.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("reset12", got.PasswordHash))

	got, err = svc.SetEnabled(ctx, a.ID, false)
	require.NoError(t, err)
	assert.False(t, got.Enabled)

	require.NoError(t, svc.Delete(ctx, a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), domain.ErrNotFound)
}

func newAuth(t *testing.T) (*AuthService, *UserService) {
	t.Helper()
	users := memstore.New().Users()
	jwter := &auth.JWTer{Secret: []byte("k"), Issuer: "test", TTL: time.Hour}
	return NewAuthService(users, jwter, "perfume.test"), NewUserService(users)
}

func TestAuth_InvalidCredentialsAreIndistinguishable(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuth(t)
	_, err := users.Create(ctx, UserInput{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPw := svc.Authenticate(ctx, "alice", "nope")
	_, unknown := svc.Authenticate(ctx, "mallory", "nope")
	assert.Equal(t, domain.ErrInvalidCredentials, wrongPw)
	assert.Equal(t, wrongPw, unknown)
	assert.Equal(t, wrongPw.Error(), unknown.Error())

	sess, err := svc.Authenticate(ctx, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice", sess.Username)
}

func TestAuth_DisabledAccount(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuth(t)
	off := false
	_, err := users.Create(ctx, UserInput{Username: "alice", Email: "alice@example.com", Password: "secret1", Enabled: &off})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrAccountDisabled)

	// 密码错误时不暴露禁用状态
	_, err = svc.Login(ctx, LoginInput{Username: "alice", Password: "bad"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuth_RegisterAndValidate(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuth(t)

	res, err := svc.Register(ctx, RegisterInput{Username: "carol", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "carol@perfume.test", res.Email)
	assert.Equal(t, []string{domain.RoleUser}, res.Roles)
	assert.True(t, svc.Validate(res.Token))
	assert.False(t, svc.Validate(res.Token+"x"))

	u, err := users.Get(ctx, 1)
	require.NoError(t, err)
	assert.True(t, u.Enabled)

	_, err = svc.Register(ctx, RegisterInput{Username: "carol", Password: "secret1"})
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)

	login, err := svc.Login(ctx, LoginInput{Username: "carol", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "Login successful", login.Message)
}

func TestUser_EnsureAdminAndResetByUsername(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(memstore.New().Users())

	created, err := svc.EnsureAdmin(ctx, "root", "admin123", "root@example.com")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin(ctx, "root", "different", "root@example.com")
	require.NoError(t, err)
	assert.False(t, created)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, domain.RoleSet{domain.RoleAdmin, domain.RoleUser}, users[0].Roles)
	assert.True(t, utils.CheckPassword("admin123", users[0].PasswordHash))

	require.NoError(t, svc.ResetPasswordByUsername(ctx, "root", ResetPasswordInput{Password: "newpass1"}))
	u, err := svc.Get(ctx, users[0].ID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("newpass1", u.PasswordHash))

	err = svc.ResetPasswordByUsername(ctx, "ghost", ResetPasswordInput{Password: "newpass1"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUser_PasswordByteLimit(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := NewUserService(store.Users())
	long := strings.Repeat("密", 30) // 30 个字符，90 字节

	_, err := svc.Create(ctx, UserInput{Username: "dave", Email: "dave@example.com", Password: long})
	require.ErrorIs(t, err, domain.ErrValidation)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "password")

	u, err := svc.Create(ctx, UserInput{Username: "dave", Email: "dave@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, u.ID, UserInput{Username: "dave", Email: "dave@example.com", Password: long})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, svc.ResetPassword(ctx, u.ID, ResetPasswordInput{Password: long}), domain.ErrValidation)

	err = svc.ChangePassword(ctx, u.ID, ChangePasswordInput{CurrentPassword: "secret1", NewPassword: long})
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "newPassword")

	// 72 字节整好可以
	_, err = svc.Update(ctx, u.ID, UserInput{Username: "dave", Email: "dave@example.com", Password: strings.Repeat("密", 24)})
	assert.NoError(t, err)

	a := NewAuthService(store.Users(), &auth.JWTer{Secret: []byte("k"), Issuer: "t", TTL: time.Hour}, "perfume.test")
	_, err = a.Register(ctx, RegisterInput{Username: "erin", Password: long})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

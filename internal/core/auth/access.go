package auth

import (
	"strings"

	"perfume-catalog/internal/domain"
)

// Access 路由访问规则；零值即公开
type Access struct {
	roles []string
	skip  bool
}

var Public = Access{}

// Unchecked 不解析 token，由处理函数自己判断（如 /auth/validate）
var Unchecked = Access{skip: true}

func RequiresAnyOf(roles ...string) Access {
	return Access{roles: domain.NewRoleSet(roles...)}
}

func (a Access) IsPublic() bool { return len(a.roles) == 0 }

func (a Access) IsUnchecked() bool { return a.skip }

func (a Access) Roles() []string { return append([]string(nil), a.roles...) }

type Outcome int

const (
	Allowed Outcome = iota
	Unauthenticated
	RoleDenied
)

type Decision struct {
	Outcome Outcome
	Claims  *Claims // 匿名访问时为 nil
	Err     error
}

// TokenParser 由 *JWTer 实现
type TokenParser interface {
	Parse(token string) (*Claims, error)
}

// BearerToken 取出 "Bearer <token>"；缺失或格式不对返回 ""
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Evaluate 请求鉴权：
// 无 token -> 匿名；token 无效 -> 401（公开路由也一样）；
// 角色不足 -> 403；匿名访问受保护路由 -> 401。
// Unchecked 直接放行，不带 Claims。
func Evaluate(a Access, header string, p TokenParser) Decision {
	if a.skip {
		return Decision{Outcome: Allowed}
	}
	var claims *Claims
	if tok := BearerToken(header); tok != "" {
		c, err := p.Parse(tok)
		if err != nil {
			return Decision{Outcome: Unauthenticated, Err: err}
		}
		claims = c
	}

	if a.IsPublic() {
		return Decision{Outcome: Allowed, Claims: claims}
	}
	if claims == nil {
		return Decision{Outcome: Unauthenticated, Err: domain.ErrInvalidToken}
	}
	if !domain.RoleSet(claims.Roles).HasAny(a.roles...) {
		return Decision{Outcome: RoleDenied, Claims: claims, Err: domain.ErrForbidden}
	}
	return Decision{Outcome: Allowed, Claims: claims}
}

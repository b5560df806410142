package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"perfume-catalog/internal/core/auth"
	resp "perfume-catalog/internal/transport/http/response"
)

const ClaimsKey = "claims"

// Guard 按路由的访问规则鉴权；无状态，每次都解析 token
func Guard(p auth.TokenParser, a auth.Access) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		d := auth.Evaluate(a, header, p)
		switch d.Outcome {
		case auth.Unauthenticated:
			msg := "Full authentication is required to access this resource"
			if auth.BearerToken(header) != "" {
				msg = "Invalid or expired token"
			}
			resp.Abort(c, http.StatusUnauthorized, msg)
			return
		case auth.RoleDenied:
			resp.Abort(c, http.StatusForbidden, "Access denied")
			return
		}
		if d.Claims != nil {
			c.Set(ClaimsKey, d.Claims)
		}
		c.Next()
	}
}

// ClaimsFrom 匿名访问时返回 false
func ClaimsFrom(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	cl, ok := v.(*auth.Claims)
	return cl, ok && cl != nil
}

package auth

import (
	"net/http"

	"go-shop/internal/user"

	"github.com/gin-gonic/gin"
)

type Operation string

const (
	OpListUsers      Operation = "users.list"
	OpViewUser       Operation = "users.view"
	OpCreateUser     Operation = "users.create"
	OpUpdateUser     Operation = "users.update"
	OpUpdateRole     Operation = "users.update_role"
	OpUpdateInfo     Operation = "users.update_info"
	OpUpdatePassword Operation = "users.update_password"
	OpDeleteUser     Operation = "users.delete"
	OpCreateProduct  Operation = "products.create"
	OpUpdateProduct  Operation = "products.update"
	OpDeleteProduct  Operation = "products.delete"
	OpCreateComment  Operation = "comments.create"
	OpUpdateComment  Operation = "comments.update"
	OpDeleteComment  Operation = "comments.delete"
	OpViewStats      Operation = "stats.view"
)

// policy lists the roles allowed to run an operation. Operations missing
// from it are open to any authenticated user.
var policy = map[Operation][]user.Role{
	OpCreateUser: {user.RoleAdmin},
	OpUpdateRole: {user.RoleAdmin},
	OpDeleteUser: {user.RoleAdmin},
	OpViewStats:  {user.RoleAdmin},
}

func Permitted(role user.Role, op Operation) bool {
	if !role.Valid() {
		return false
	}
	roles, gated := policy[op]
	if !gated {
		return true
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

// RequirePermission must run after AuthMiddleware.
func RequirePermission(op Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := UserFromContext(c.Request.Context())
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthenticated"})
			return
		}
		if !Permitted(u.Role, op) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}
		c.Next()
	}
}

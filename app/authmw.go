package app

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gearpool/models"
)

const IdentityHeader = "X-Telegram-ID"

// UserFinder 身份目录的最小视图；FindUser 未找到时返回 (nil, nil)
type UserFinder interface {
	FindUser(ctx context.Context, telegramID int64) (*models.User, error)
}

// IdentityRequired 解析 X-Telegram-ID 并确认该用户存在。
// 真实鉴权在上游（Telegram bot）完成，这里只做存在性绑定。
func IdentityRequired(users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(IdentityHeader), 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "missing identity"})
			return
		}
		u, err := users.FindUser(c.Request.Context(), id)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, H{"error": "internal error"})
			return
		}
		if u == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unknown identity"})
			return
		}
		c.Set("telegramID", id)
		c.Set("isManager", u.IsManager)
		c.Next()
	}
}

// ManagerOnly 要求 IdentityRequired 已注入 isManager
func ManagerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("isManager")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, H{"error": "unauthorized"})
			return
		}
		if is, _ := v.(bool); !is {
			c.AbortWithStatusJSON(http.StatusForbidden, H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

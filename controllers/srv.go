// controllers/srv.go
package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gearpool/app"
	"gearpool/cache"
	"gearpool/db"
	"gearpool/ledger"
	"gearpool/models"
)

// UserDirectory 身份目录的读写面（db.Repo 实现；测试里用 ledger.MemStore）
type UserDirectory interface {
	CreateUser(ctx context.Context, u *models.User) error
	FindUser(ctx context.Context, telegramID int64) (*models.User, error)
	UpdateUser(ctx context.Context, telegramID int64, fields map[string]any) (*models.User, error)
}

// SearchCache 检索缓存；nil 表示不缓存
type SearchCache interface {
	Get(ctx context.Context, q string) ([]models.Gear, error)
	Put(ctx context.Context, q string, items []models.Gear) error
	Invalidate(ctx context.Context) error
}

type Srv struct {
	Ledger *ledger.Service
	Users  UserDirectory
	Cache  SearchCache
	Log    *zap.Logger
}

func GetSrv(a *app.App) *Srv {
	repo := db.NewRepo(a.DB)
	return &Srv{
		Ledger: ledger.NewService(repo),
		Users:  repo,
		Cache:  cache.NewSearchCache(a.RDB, a.Config.SearchCacheTTL),
		Log:    a.Log,
	}
}

// fail 将领域错误映射为 HTTP 状态；其余按瞬态故障处理
func (s *Srv) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, app.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrInvalid):
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrConflict):
		c.JSON(http.StatusConflict, app.H{"error": err.Error()})
	default:
		s.Log.Error("request failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, app.H{"error": "temporary failure, retry"})
	}
}

// dropSearchCache 目录有写入后整体失效；失败只记日志
func (s *Srv) dropSearchCache(ctx context.Context) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.Log.Warn("search cache invalidate failed", zap.Error(err))
	}
}

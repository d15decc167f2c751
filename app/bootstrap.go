// app/bootstrap.go
package app

import (
	"context"

	"go.uber.org/zap"

	"gearpool/db"
	"gearpool/models"
)

// BootstrapFirstManager 空库引导：没有任何管理员时，按环境变量建一个，
// 否则装备登记接口永远无人能调
func BootstrapFirstManager(ctx context.Context, cfg Config, repo *db.Repo, logger *zap.Logger) {
	if cfg.BootstrapManagerID == 0 {
		return
	}
	n, err := repo.CountManagers(ctx)
	if err != nil {
		logger.Warn("bootstrap: count managers failed", zap.Error(err))
		return
	}
	if n > 0 {
		return
	}

	u := &models.User{
		TelegramID: cfg.BootstrapManagerID,
		FullName:   cfg.BootstrapManagerName,
		Phone:      "-",
		IsManager:  true,
	}
	if err := repo.CreateUser(ctx, u); err != nil {
		logger.Warn("bootstrap: create manager failed", zap.Error(err))
		return
	}
	logger.Info("bootstrap: first manager created",
		zap.Int64("telegramId", u.TelegramID))
}

// db/repo_users.go
package db

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"gearpool/ledger"
	"gearpool/models"
)

// 账本只依赖存在性检查；其余是身份目录的简单增改查

func (r *Repo) UserExists(ctx context.Context, telegramID int64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("telegram_id = ?", telegramID).
		Count(&n).Error
	return n > 0, err
}

func (r *Repo) FindUser(ctx context.Context, telegramID int64) (*models.User, error) {
	var u models.User
	if err := r.DB.WithContext(ctx).First(&u, "telegram_id = ?", telegramID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// CreateUser 把主键冲突映射成业务冲突：两个并发注册中后到的一方
// 应拿到 409 而不是 503
func (r *Repo) CreateUser(ctx context.Context, u *models.User) error {
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("%w: user", ledger.ErrConflict)
		}
		return err
	}
	return nil
}

func (r *Repo) UpdateUser(ctx context.Context, telegramID int64, fields map[string]any) (*models.User, error) {
	if len(fields) > 0 {
		if err := r.DB.WithContext(ctx).Model(&models.User{}).
			Where("telegram_id = ?", telegramID).
			Updates(fields).Error; err != nil {
			return nil, err
		}
	}
	return r.FindUser(ctx, telegramID)
}

func (r *Repo) CountManagers(ctx context.Context) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.User{}).
		Where("is_manager = TRUE").
		Count(&n).Error
	return n, err
}

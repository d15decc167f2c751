// db/repo_gear.go
package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gearpool/ledger"
	"gearpool/models"
)

func (r *Repo) GetGear(ctx context.Context, id string) (*models.Gear, error) {
	var g models.Gear
	if err := r.DB.WithContext(ctx).First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// GetGearForUpdate 锁住该行：同一 gear 的并发借/还在这里串行化
func (r *Repo) GetGearForUpdate(ctx context.Context, id string) (*models.Gear, error) {
	var g models.Gear
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&g, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *Repo) GearNameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	var n int64
	q := r.DB.WithContext(ctx).Model(&models.Gear{}).
		Where("LOWER(name) = LOWER(?)", name)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repo) CreateGear(ctx context.Context, g *models.Gear) error {
	return r.DB.WithContext(ctx).Create(g).Error
}

func (r *Repo) UpdateGear(ctx context.Context, id string, fields map[string]any) error {
	return r.DB.WithContext(ctx).Model(&models.Gear{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *Repo) SearchGear(ctx context.Context, q string) ([]models.Gear, error) {
	like := "%" + strings.ToLower(q) + "%"
	// 非 nil 空切片：空结果也要能被缓存（nil 在缓存侧会被当作未命中）
	items := []models.Gear{}
	err := r.DB.WithContext(ctx).
		Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like).
		Find(&items).Error
	return items, err
}

// AdjustAvailable is a guarded counter update: the WHERE clause keeps the
// result inside [0, total_quantity], so even without the row lock two racing
// units cannot oversubscribe the pool (flash-sale style second line of
// defense). RowsAffected == 0 means the guard refused the change.
func (r *Repo) AdjustAvailable(ctx context.Context, gearID string, delta int) error {
	res := r.DB.WithContext(ctx).Model(&models.Gear{}).
		Where("id = ? AND available_count + ? >= 0 AND available_count + ? <= total_quantity",
			gearID, delta, delta).
		Update("available_count", gorm.Expr("available_count + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: available count out of range", ledger.ErrConflict)
	}
	return nil
}

func (r *Repo) OpenQuantity(ctx context.Context, gearID string) (int, error) {
	var n int
	err := r.DB.WithContext(ctx).Model(&models.Rental{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("gear_id = ? AND returned_at IS NULL", gearID).
		Scan(&n).Error
	return n, err
}

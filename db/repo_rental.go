// db/repo_rental.go
package db

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"gearpool/ledger"
	"gearpool/models"
)

func (r *Repo) GetRental(ctx context.Context, id string) (*models.Rental, error) {
	var rec models.Rental
	if err := r.DB.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) GetRentalForUpdate(ctx context.Context, id string) (*models.Rental, error) {
	var rec models.Rental
	if err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *Repo) CreateRental(ctx context.Context, rec *models.Rental) error {
	return r.DB.WithContext(ctx).Create(rec).Error
}

func (r *Repo) UpdateRental(ctx context.Context, id string, fields map[string]any) error {
	return r.DB.WithContext(ctx).Model(&models.Rental{}).
		Where("id = ?", id).
		Updates(fields).Error
}

// ListOpenRentals 未归还记录，读取时 join 出 gear 名称
func (r *Repo) ListOpenRentals(ctx context.Context, borrowerID *int64) ([]ledger.RentalDetail, error) {
	q := r.DB.WithContext(ctx).
		Table(models.RentalTable+" r").
		Select("r.*, g.name AS gear_name").
		Joins("JOIN "+models.GearTable+" g ON g.id = r.gear_id").
		Where("r.returned_at IS NULL").
		Order("r.issued_at DESC")
	if borrowerID != nil {
		q = q.Where("r.borrower_id = ?", *borrowerID)
	}
	var rows []ledger.RentalDetail
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repo) AppendReturnEvent(ctx context.Context, ev *models.ReturnEvent) error {
	return r.DB.WithContext(ctx).Create(ev).Error
}

func (r *Repo) ListReturnEvents(ctx context.Context, rentalID string) ([]models.ReturnEvent, error) {
	var evs []models.ReturnEvent
	err := r.DB.WithContext(ctx).
		Where("rental_id = ?", rentalID).
		Order("created_at ASC").
		Find(&evs).Error
	return evs, err
}

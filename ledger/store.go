package ledger

import (
	"context"

	"gearpool/models"
)

// Store is the persistence boundary for the catalog and the rental ledger.
//
// Atomic runs fn so that every read and write inside commits together or not
// at all. Implementations must make concurrent units touching the same gear
// row serialize (row lock or guarded compare-and-swap); units touching
// different gear may run in parallel.
//
// Lookup methods return (nil, nil) when the row does not exist; an error
// always means infrastructure failure.
type Store interface {
	Atomic(ctx context.Context, fn func(tx Store) error) error

	GetGear(ctx context.Context, id string) (*models.Gear, error)
	GetGearForUpdate(ctx context.Context, id string) (*models.Gear, error)
	GearNameTaken(ctx context.Context, name, excludeID string) (bool, error)
	CreateGear(ctx context.Context, g *models.Gear) error
	UpdateGear(ctx context.Context, id string, fields map[string]any) error
	SearchGear(ctx context.Context, q string) ([]models.Gear, error)
	// AdjustAvailable adds delta to available_count, guarded so the result
	// stays within [0, total_quantity]. A guard miss is reported as ErrConflict.
	AdjustAvailable(ctx context.Context, gearID string, delta int) error
	// OpenQuantity sums the outstanding quantity of open rentals for one gear.
	OpenQuantity(ctx context.Context, gearID string) (int, error)

	GetRental(ctx context.Context, id string) (*models.Rental, error)
	GetRentalForUpdate(ctx context.Context, id string) (*models.Rental, error)
	CreateRental(ctx context.Context, rec *models.Rental) error
	UpdateRental(ctx context.Context, id string, fields map[string]any) error
	ListOpenRentals(ctx context.Context, borrowerID *int64) ([]RentalDetail, error)

	AppendReturnEvent(ctx context.Context, ev *models.ReturnEvent) error
	ListReturnEvents(ctx context.Context, rentalID string) ([]models.ReturnEvent, error)

	UserExists(ctx context.Context, telegramID int64) (bool, error)
}

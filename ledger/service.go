// Package ledger owns the gear catalog and the rental allocation ledger:
// every unit lent out is accounted for so that, for each gear,
// available_count plus the outstanding quantity of open rentals always
// equals total_quantity.
package ledger

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"gearpool/models"
)

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// RegisterGear 登记一种新装备；available 缺省等于 total
func (s *Service) RegisterGear(ctx context.Context, in RegisterGearInput) (*models.Gear, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("name")
	}
	if in.TotalQuantity <= 0 {
		return nil, invalid("total quantity")
	}
	avail := in.TotalQuantity
	if in.AvailableCount != nil {
		avail = *in.AvailableCount
		if avail < 0 || avail > in.TotalQuantity {
			return nil, invalid("available count")
		}
	}

	g := &models.Gear{
		ID:             uuid.NewString(),
		Name:           name,
		TotalQuantity:  in.TotalQuantity,
		AvailableCount: avail,
		Description:    in.Description,
	}
	err := s.store.Atomic(ctx, func(tx Store) error {
		taken, err := tx.GearNameTaken(ctx, name, "")
		if err != nil {
			return err
		}
		if taken {
			return conflict("gear name")
		}
		return tx.CreateGear(ctx, g)
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Service) GetGear(ctx context.Context, id string) (*models.Gear, error) {
	g, err := s.store.GetGear(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, notFound("gear")
	}
	return g, nil
}

// SearchGear 按名称/描述做大小写不敏感的子串匹配
func (s *Service) SearchGear(ctx context.Context, q string) ([]models.Gear, error) {
	return s.store.SearchGear(ctx, strings.TrimSpace(q))
}

// EditGear applies only the supplied fields. Edits touching either counter
// are re-validated against the outstanding open quantity, so an
// administrative edit can never break the pool accounting.
func (s *Service) EditGear(ctx context.Context, id string, p GearPatch) (*models.Gear, error) {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		if name == "" {
			return nil, invalid("name")
		}
		p.Name = &name
	}

	var out *models.Gear
	err := s.store.Atomic(ctx, func(tx Store) error {
		g, err := tx.GetGearForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if g == nil {
			return notFound("gear")
		}
		if p.Name != nil && !strings.EqualFold(*p.Name, g.Name) {
			taken, err := tx.GearNameTaken(ctx, *p.Name, g.ID)
			if err != nil {
				return err
			}
			if taken {
				return conflict("gear name")
			}
		}
		if p.touchesCounts() {
			total, avail := g.TotalQuantity, g.AvailableCount
			if p.TotalQuantity != nil {
				total = *p.TotalQuantity
			}
			if p.AvailableCount != nil {
				avail = *p.AvailableCount
			}
			if total <= 0 {
				return invalid("total quantity")
			}
			if avail < 0 || avail > total {
				return invalid("available count")
			}
			open, err := tx.OpenQuantity(ctx, g.ID)
			if err != nil {
				return err
			}
			if avail+open != total {
				return invalid("counts out of balance")
			}
		}

		fields := p.fields()
		if len(fields) > 0 {
			if err := tx.UpdateGear(ctx, g.ID, fields); err != nil {
				return err
			}
		}
		out, err = tx.GetGear(ctx, g.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Checkout issues a new loan and decrements the gear pool in one atomic
// unit. Validation happens before any write; either the rental row and the
// decrement both commit or neither does.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*RentalDetail, error) {
	if in.Quantity <= 0 {
		return nil, invalid("quantity")
	}
	if strings.TrimSpace(in.Event) == "" {
		return nil, invalid("event")
	}
	now := s.now().UTC()

	var out *RentalDetail
	err := s.store.Atomic(ctx, func(tx Store) error {
		g, err := tx.GetGearForUpdate(ctx, in.GearID)
		if err != nil {
			return err
		}
		if g == nil {
			return notFound("gear")
		}
		if in.Quantity > g.AvailableCount {
			return invalid("insufficient stock")
		}
		if ok, err := tx.UserExists(ctx, in.BorrowerID); err != nil {
			return err
		} else if !ok {
			return notFound("borrower")
		}
		if ok, err := tx.UserExists(ctx, in.IssuerID); err != nil {
			return err
		} else if !ok {
			return notFound("issuer")
		}
		if !onLaterDay(in.DueAt, now) {
			return invalid("due date")
		}

		rec := &models.Rental{
			ID:         uuid.NewString(),
			BorrowerID: in.BorrowerID,
			IssuerID:   in.IssuerID,
			GearID:     g.ID,
			IssuedAt:   now,
			DueAt:      in.DueAt,
			Quantity:   in.Quantity,
			Event:      strings.TrimSpace(in.Event),
			Note:       in.Note,
		}
		if err := tx.CreateRental(ctx, rec); err != nil {
			return err
		}
		if err := tx.AdjustAvailable(ctx, g.ID, -in.Quantity); err != nil {
			return err
		}
		out = &RentalDetail{Rental: *rec, GearName: g.Name}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Return hands back all or part of a loan. A full return closes the record;
// a partial return shrinks its outstanding quantity and leaves it open.
// Either way the gear pool is incremented and an audit event appended in the
// same atomic unit.
func (s *Service) Return(ctx context.Context, in ReturnInput) (*RentalDetail, error) {
	var out *RentalDetail
	err := s.store.Atomic(ctx, func(tx Store) error {
		rec, err := tx.GetRentalForUpdate(ctx, in.RentalID)
		if err != nil {
			return err
		}
		if rec == nil {
			return notFound("loan")
		}
		if ok, err := tx.UserExists(ctx, in.AcceptorID); err != nil {
			return err
		} else if !ok {
			return invalid("manager")
		}
		if rec.ReturnedAt != nil {
			return conflict("already returned")
		}
		qty := rec.Quantity
		if in.Quantity != nil {
			qty = *in.Quantity
		}
		if qty <= 0 {
			return invalid("quantity")
		}
		if qty > rec.Quantity {
			return invalid("over-return")
		}

		now := s.now().UTC()
		if qty == rec.Quantity {
			// 全部归还：关闭记录
			if err := tx.UpdateRental(ctx, rec.ID, map[string]any{
				"returned_at": now,
				"acceptor_id": in.AcceptorID,
			}); err != nil {
				return err
			}
			rec.ReturnedAt = &now
			acc := in.AcceptorID
			rec.AcceptorID = &acc
		} else {
			// 部分归还：记录保持打开，未还数量缩减
			if err := tx.UpdateRental(ctx, rec.ID, map[string]any{
				"quantity": rec.Quantity - qty,
			}); err != nil {
				return err
			}
			rec.Quantity -= qty
		}
		if err := tx.AdjustAvailable(ctx, rec.GearID, qty); err != nil {
			return err
		}
		if err := tx.AppendReturnEvent(ctx, &models.ReturnEvent{
			ID:         uuid.NewString(),
			RentalID:   rec.ID,
			AcceptorID: in.AcceptorID,
			Quantity:   qty,
			CreatedAt:  now,
		}); err != nil {
			return err
		}

		g, err := tx.GetGear(ctx, rec.GearID)
		if err != nil {
			return err
		}
		out = &RentalDetail{Rental: *rec}
		if g != nil {
			out.GearName = g.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) GetRental(ctx context.Context, id string) (*RentalDetail, error) {
	rec, err := s.store.GetRental(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound("loan")
	}
	out := &RentalDetail{Rental: *rec}
	g, err := s.store.GetGear(ctx, rec.GearID)
	if err != nil {
		return nil, err
	}
	if g != nil {
		out.GearName = g.Name
	}
	return out, nil
}

// ListOutstanding 列出未归还的记录，可按借用人过滤
func (s *Service) ListOutstanding(ctx context.Context, borrowerID *int64) ([]RentalDetail, error) {
	return s.store.ListOpenRentals(ctx, borrowerID)
}

func (s *Service) ListReturnEvents(ctx context.Context, rentalID string) ([]models.ReturnEvent, error) {
	rec, err := s.store.GetRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, notFound("loan")
	}
	return s.store.ListReturnEvents(ctx, rentalID)
}

// EditRental 只修改元数据（到期、事件、备注），不触碰数量耦合
func (s *Service) EditRental(ctx context.Context, id string, p RentalPatch) (*RentalDetail, error) {
	if p.Event != nil && strings.TrimSpace(*p.Event) == "" {
		return nil, invalid("event")
	}

	var out *RentalDetail
	err := s.store.Atomic(ctx, func(tx Store) error {
		rec, err := tx.GetRentalForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if rec == nil {
			return notFound("loan")
		}
		if p.DueAt != nil && !p.DueAt.After(rec.IssuedAt) {
			return invalid("due date")
		}

		fields := p.fields()
		if len(fields) > 0 {
			if err := tx.UpdateRental(ctx, rec.ID, fields); err != nil {
				return err
			}
		}
		rec, err = tx.GetRental(ctx, rec.ID)
		if err != nil {
			return err
		}
		out = &RentalDetail{Rental: *rec}
		g, err := tx.GetGear(ctx, rec.GearID)
		if err != nil {
			return err
		}
		if g != nil {
			out.GearName = g.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// onLaterDay reports whether t falls on a later UTC calendar day than ref.
// Due dates are date-granular: "due today" is already too late to issue.
func onLaterDay(t, ref time.Time) bool {
	ty, tm, td := t.UTC().Date()
	ry, rm, rd := ref.UTC().Date()
	a := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	b := time.Date(ry, rm, rd, 0, 0, 0, 0, time.UTC)
	return a.After(b)
}

package ledger

import (
	"time"

	"gearpool/models"
)

type RegisterGearInput struct {
	Name          string
	TotalQuantity int
	// AvailableCount 缺省时等于 TotalQuantity
	AvailableCount *int
	Description    string
}

type CheckoutInput struct {
	BorrowerID int64
	IssuerID   int64
	GearID     string
	Quantity   int
	DueAt      time.Time
	Event      string
	Note       string
}

type ReturnInput struct {
	RentalID   string
	AcceptorID int64
	// Quantity 缺省时归还全部未还数量
	Quantity *int
}

// GearPatch applies only the supplied fields; nil means "not provided",
// which is distinct from a pointer to the zero value.
type GearPatch struct {
	Name           *string
	TotalQuantity  *int
	AvailableCount *int
	Description    *string
}

func (p GearPatch) fields() map[string]any {
	f := map[string]any{}
	if p.Name != nil {
		f["name"] = *p.Name
	}
	if p.TotalQuantity != nil {
		f["total_quantity"] = *p.TotalQuantity
	}
	if p.AvailableCount != nil {
		f["available_count"] = *p.AvailableCount
	}
	if p.Description != nil {
		f["description"] = *p.Description
	}
	return f
}

func (p GearPatch) touchesCounts() bool {
	return p.TotalQuantity != nil || p.AvailableCount != nil
}

// RentalPatch covers loan metadata only; quantity and the availability
// coupling are owned by the checkout/return protocols.
type RentalPatch struct {
	DueAt *time.Time
	Event *string
	Note  *string
}

func (p RentalPatch) fields() map[string]any {
	f := map[string]any{}
	if p.DueAt != nil {
		f["due_at"] = *p.DueAt
	}
	if p.Event != nil {
		f["event"] = *p.Event
	}
	if p.Note != nil {
		f["note"] = *p.Note
	}
	return f
}

// RentalDetail 在读取时补上 gear 名称（join，不落库）
type RentalDetail struct {
	models.Rental
	GearName string `json:"gearName"`
}

// models/gear_rental.go
package models

import "time"

const GearTable = "gear"
const RentalTable = "rentals"

type Gear struct {
	ID             string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string    `gorm:"size:100;uniqueIndex;not null" json:"name"` // 唯一名称
	TotalQuantity  int       `gorm:"not null" json:"totalQuantity"`
	AvailableCount int       `gorm:"not null" json:"availableCount"` // 0 <= available <= total
	Description    string    `gorm:"size:500" json:"description,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Rental struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	BorrowerID int64  `gorm:"index;not null" json:"borrowerId"`
	IssuerID   int64  `gorm:"not null" json:"issuerId"`
	AcceptorID *int64 `json:"acceptorId,omitempty"`
	GearID     string `gorm:"type:uuid;index;not null" json:"gearId"`

	IssuedAt time.Time `gorm:"index;not null" json:"issuedAt"`
	DueAt    time.Time `gorm:"not null" json:"dueAt"`

	ReturnedAt *time.Time `gorm:"index" json:"returnedAt,omitempty"`

	// Quantity 表示尚未归还的数量，部分归还时递减
	Quantity int    `gorm:"not null" json:"quantity"`
	Event    string `gorm:"size:300;not null" json:"event"`
	Note     string `gorm:"size:300" json:"note,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Gear) TableName() string   { return GearTable }
func (Rental) TableName() string { return RentalTable }

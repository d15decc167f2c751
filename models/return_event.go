package models

import "time"

// ReturnEvent 记录每次（含部分）归还的审计信息
type ReturnEvent struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	RentalID   string    `gorm:"type:uuid;index;not null" json:"rentalId"`
	AcceptorID int64     `gorm:"not null" json:"acceptorId"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (ReturnEvent) TableName() string { return "return_events" }

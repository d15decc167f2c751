package models

import "time"

// User 以 Telegram ID 作为主键（外部身份，上游 bot 负责真实性）
type User struct {
	TelegramID int64   `gorm:"primaryKey;autoIncrement:false" json:"telegramId"`
	FullName   string  `gorm:"size:100;not null" json:"fullName"`
	Phone      string  `gorm:"size:20;not null" json:"phone"`
	Document   *string `gorm:"size:100" json:"document,omitempty"`
	IsManager  bool    `gorm:"not null;default:false" json:"isManager"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string { return "users" }

package entity

import (
	"time"
)

// Статусы платежа
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// Payment представляет подтверждённую транзакцию платёжного шлюза.
// Reference уникален: повторная верификация той же ссылки не создаёт вторую запись.
type Payment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	Amount     int64     `gorm:"not null" json:"amount"` // В основной валюте, шлюз отдаёт кобо
	Status     string    `gorm:"size:20;not null;default:'pending'" json:"status"`
	Reference  string    `gorm:"size:100;not null;uniqueIndex" json:"reference"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (Payment) TableName() string {
	return "payments"
}

// IsPaid возвращает true для подтверждённого платежа
func (p *Payment) IsPaid() bool {
	return p.Status == PaymentStatusPaid
}

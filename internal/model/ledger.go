package model

import "time"

type LedgerEntryType string

const (
	LedgerEntrySpend  LedgerEntryType = "spend"  // Списание при бронировании
	LedgerEntryRefund LedgerEntryType = "refund" // Компенсация при отмене
	LedgerEntryEarn   LedgerEntryType = "earn"   // Пополнение баланса
)

// LedgerEntry представляет запись кредитного леджера.
// Леджер append-only: баланс пользователя равен сумме amount всех его записей,
// отмена добавляет компенсирующую запись, а не меняет исходную.
type LedgerEntry struct {
	ID               int64           `json:"id"`
	UserID           int64           `json:"user_id"`
	Amount           int             `json:"amount"` // со знаком: списание отрицательное
	Type             LedgerEntryType `json:"type"`
	RelatedBookingID *int64          `json:"related_booking_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
}

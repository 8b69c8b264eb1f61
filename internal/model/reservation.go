package model

import "time"

// Reservation is a confirmed booking. Rows are append-only; (date, time) is unique.
type Reservation struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:254;not null" json:"email"`
	Phone     string    `gorm:"size:32;not null" json:"phone"`
	Date      string    `gorm:"column:slot_date;size:10;not null;uniqueIndex:idx_reservation_slot,priority:1" json:"date"`
	Time      string    `gorm:"column:slot_time;size:10;not null;uniqueIndex:idx_reservation_slot,priority:2" json:"time"`
	Note      *string   `gorm:"type:text" json:"note,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}

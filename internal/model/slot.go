package model

import "time"

// Slot is one published (date, time) pair of the inventory.
// Available is advisory; the reservations table decides whether a slot is taken.
type Slot struct {
	ID        int64     `gorm:"primaryKey" json:"-"`
	Date      string    `gorm:"column:slot_date;size:10;not null;uniqueIndex:idx_slot_date_time,priority:1" json:"date"`
	Time      string    `gorm:"column:slot_time;size:10;not null;uniqueIndex:idx_slot_date_time,priority:2" json:"time"`
	Position  int       `gorm:"column:display_order;not null;default:0" json:"-"`
	Available bool      `gorm:"not null;default:true;index" json:"available"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

// TableName keeps the table name used by the published-schedule importer.
func (Slot) TableName() string {
	return "available_slots"
}

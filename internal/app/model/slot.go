package model

import "time"

// Slot is one named, independently serialized collection in durable storage.
type Slot struct {
	Name      string    `gorm:"primaryKey;type:varchar(191)" json:"name"`
	Data      []byte    `gorm:"not null" json:"data"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Slot) TableName() string {
	return "kv_slots"
}

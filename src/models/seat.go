package models

import (
	"fmt"

	"mrs/src/types"
)

type Seat struct {
	ID           uint   `gorm:"primarykey" json:"id"`
	Row          string `gorm:"uniqueIndex:idx_auditorium_seat" json:"row,omitempty"`
	Number       uint   `gorm:"uniqueIndex:idx_auditorium_seat" json:"number,omitempty"`
	AuditoriumID uint   `gorm:"uniqueIndex:idx_auditorium_seat" json:"auditorium_id,omitempty"`

	Auditorium Auditorium `json:"auditorium,omitempty"`

	types.Timestamps
}

func (s Seat) Label() string {
	return fmt.Sprintf("%s%d", s.Row, s.Number)
}

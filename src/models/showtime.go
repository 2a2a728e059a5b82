package models

import (
	"time"

	"mrs/src/types"
)

type Showtime struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	MovieID      uint      `json:"movie_id,omitempty"`
	AuditoriumID uint      `json:"auditorium_id,omitempty"`
	StartTime    time.Time `json:"start_time,omitempty"`
	EndTime      time.Time `json:"end_time,omitempty"`
	Price        float64   `json:"price"`

	Movie        Movie         `json:"movie,omitempty"`
	Auditorium   Auditorium    `json:"auditorium,omitempty"`
	Reservations []Reservation `json:"reservations,omitempty"`

	types.Timestamps
}

func (s Showtime) Started(now time.Time) bool {
	return now.After(s.StartTime)
}

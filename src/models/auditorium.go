package models

import "mrs/src/types"

type Auditorium struct {
	ID       uint   `gorm:"primarykey" json:"id"`
	Name     string `json:"name,omitempty"`
	Capacity uint   `json:"capacity,omitempty"`

	Seats     []Seat     `json:"seats,omitempty"`
	Showtimes []Showtime `json:"showtimes,omitempty"`

	types.Timestamps
}

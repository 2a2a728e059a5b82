package models

import "mrs/src/types"

type Movie struct {
	ID           uint    `gorm:"primarykey" json:"id"`
	Title        string  `gorm:"uniqueIndex" json:"title,omitempty"`
	Slug         string  `json:"slug,omitempty"`
	Description  *string `json:"description,omitempty"`
	Genre        string  `json:"genre,omitempty"`
	DurationMins uint    `json:"duration_mins,omitempty"`

	Showtimes []Showtime `json:"showtimes,omitempty"`

	types.Timestamps
}

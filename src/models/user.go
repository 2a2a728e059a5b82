package models

import "mrs/src/types"

type User struct {
	ID    uint   `gorm:"primarykey" json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `gorm:"uniqueIndex" json:"email,omitempty"`
	Role  string `gorm:"default:'customer'" json:"role,omitempty"`

	Reservations []Reservation `gorm:"foreignKey:user_id" json:"reservations,omitempty"`

	types.Timestamps
}

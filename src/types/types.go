package types

import (
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type ReservationStatus string

const (
	RESERVATION_CONFIRMED ReservationStatus = "confirmed"
	RESERVATION_CANCELED  ReservationStatus = "cancelled"
)

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type CreateMovieRequestBody struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description,omitempty"`
	Genre        string `json:"genre,omitempty"`
	DurationMins uint   `json:"duration_mins,omitempty"`
}

type UpdateMovieRequestBody struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Genre        *string `json:"genre,omitempty"`
	DurationMins *uint   `json:"duration_mins,omitempty"`
}

type CreateAuditoriumRequestBody struct {
	Name     string `json:"name" binding:"required"`
	Capacity uint   `json:"capacity" binding:"required,min=1"`
}

type UpdateAuditoriumRequestBody struct {
	Name     *string `json:"name,omitempty"`
	Capacity *uint   `json:"capacity,omitempty" binding:"omitempty,min=1"`
}

type CreateSeatRequestBody struct {
	Row          string `json:"row" binding:"required"`
	Number       uint   `json:"number" binding:"required,min=1"`
	AuditoriumID uint   `json:"auditorium_id" binding:"required"`
}

type UpdateSeatRequestBody struct {
	Row    *string `json:"row,omitempty"`
	Number *uint   `json:"number,omitempty" binding:"omitempty,min=1"`
}

type CreateShowtimeRequestBody struct {
	MovieID      uint    `json:"movie_id" binding:"required"`
	AuditoriumID uint    `json:"auditorium_id" binding:"required"`
	StartTime    string  `json:"start_time" binding:"required,bookabledate" time_format:"2006-01-02 15:04:05 -07:00"`
	EndTime      string  `json:"end_time" binding:"required,gtdate=StartTime" time_format:"2006-01-02 15:04:05 -07:00"`
	Price        float64 `json:"price" binding:"required,min=0"`
}

type UpdateShowtimeRequestBody struct {
	MovieID   *uint    `json:"movie_id,omitempty"`
	StartTime *string  `json:"start_time,omitempty" binding:"omitempty,bookabledate"`
	EndTime   *string  `json:"end_time,omitempty"`
	Price     *float64 `json:"price,omitempty" binding:"omitempty,min=0"`
}

type CreateReservationRequestBody struct {
	ShowtimeID uint    `json:"showtime_id" binding:"required"`
	SeatIDs    []uint  `json:"seat_ids" binding:"required,min=1,unique"`
	AmountPaid float64 `json:"amount_paid" binding:"min=0"`
}

type UpdateReservationRequestBody struct {
	ShowtimeID *uint    `json:"showtime_id,omitempty"`
	SeatIDs    []uint   `json:"seat_ids,omitempty" binding:"omitempty,min=1,unique"`
	AmountPaid *float64 `json:"amount_paid,omitempty" binding:"omitempty,min=0"`
	Status     *string  `json:"status,omitempty" binding:"omitempty,oneof=confirmed cancelled"`
}

package models

import (
	"log"
	"time"

	"mrs/src/lib"
	"mrs/src/types"
)

type Reservation struct {
	ID            uint                    `gorm:"primarykey" json:"id"`
	UserID        uint                    `json:"user_id,omitempty"`
	ShowtimeID    uint                    `json:"showtime_id,omitempty"`
	Status        types.ReservationStatus `gorm:"default:'confirmed'" json:"status,omitempty"`
	AmountCharged float64                 `json:"amount_charged"`
	AmountPaid    float64                 `json:"amount_paid"`
	Code          string                  `json:"code,omitempty"`

	User          User           `json:"-"`
	Showtime      Showtime       `json:"showtime,omitempty"`
	ReservedSeats []ReservedSeat `json:"reserved_seats,omitempty"`

	types.Timestamps
}

// ReservedSeat is a seat claim for one showtime. The composite unique index
// is the storage-level backstop against double-booking: claim rows are
// deleted on cancellation, so the index covers exactly the live claims.
type ReservedSeat struct {
	ID            uint      `gorm:"primarykey" json:"id"`
	ReservationID uint      `json:"reservation_id,omitempty"`
	ShowtimeID    uint      `gorm:"uniqueIndex:idx_showtime_seat" json:"showtime_id,omitempty"`
	SeatID        uint      `gorm:"uniqueIndex:idx_showtime_seat" json:"seat_id,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`

	Seat Seat `json:"seat,omitempty"`
}

func ReservationConfirmedProducer(id uint, payload map[string]any) error {
	err := lib.KafkaProduceMessage("reservations_confirmed_producer", "reservations-confirmed", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}

func ReservationCanceledProducer(id uint, payload map[string]any) error {
	err := lib.KafkaProduceMessage("reservations_cancelled_producer", "reservations-cancelled", payload)
	if err != nil {
		log.Printf("Error on producing message: %s\n", err.Error())
		return err
	}
	return nil
}

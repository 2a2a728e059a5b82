package common

import (
	"context"
	"errors"
	"log"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"mrs/src/db"
	"mrs/src/lib"
	"mrs/src/models"
	"mrs/src/types"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const updateTimeout = 10 * time.Second

// BookingTarget is the resolved state a reservation should end up in. Create
// and update both funnel through the same validation sequence on a target;
// ExcludeReservationID keeps a reservation's own claims out of the conflict
// and capacity reads when it is being updated.
type BookingTarget struct {
	ShowtimeID           uint
	SeatIDs              []uint
	AmountPaid           float64
	ExcludeReservationID uint
}

type Payment struct {
	AmountCharged float64 `json:"amount_charged"`
	AmountPaid    float64 `json:"amount_paid"`
	Balance       float64 `json:"balance"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func joinIDs(ids []uint) string {
	sorted := make([]uint, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, 0, len(sorted))
	for _, id := range sorted {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, ", ")
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ValidateShowtime loads the showtime under a row lock. Every booking
// decision for a showtime serializes on this lock, so the conflict and
// capacity reads that follow see committed state only.
func ValidateShowtime(tx *gorm.DB, showtimeID uint, now time.Time) (*models.Showtime, error) {
	var showtime models.Showtime
	err := tx.
		Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
		Where(&models.Showtime{ID: showtimeID}).
		First(&showtime).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundf("showtime with id %d not found", showtimeID)
		}
		return nil, err
	}
	if showtime.Started(now) {
		return nil, InvalidStatef("showtime %d has already started", showtimeID)
	}
	return &showtime, nil
}

// CheckSeats verifies every requested seat exists and belongs to the
// showtime's auditorium.
func CheckSeats(tx *gorm.DB, auditoriumID uint, seatIDs []uint) ([]models.Seat, error) {
	var seats []models.Seat
	if err := tx.Where("id IN ?", seatIDs).Find(&seats).Error; err != nil {
		return nil, err
	}
	found := make(map[uint]bool, len(seats))
	for _, seat := range seats {
		found[seat.ID] = true
	}
	var missing []uint
	for _, id := range seatIDs {
		if !found[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return nil, InvalidInputf("seats not found: %s", joinIDs(missing))
	}
	var foreign []uint
	for _, seat := range seats {
		if seat.AuditoriumID != auditoriumID {
			foreign = append(foreign, seat.ID)
		}
	}
	if len(foreign) > 0 {
		return nil, InvalidInputf("seats not in auditorium %d: %s", auditoriumID, joinIDs(foreign))
	}
	return seats, nil
}

// ReconcilePayment prices the requested seats and checks the tendered
// amount covers the charge. Overpayment is kept as a balance, never an
// error. Amounts are compared at two decimal places.
func ReconcilePayment(amountPaid float64, seatCount int, price float64) (*Payment, error) {
	charged := round2(price * float64(seatCount))
	paid := round2(amountPaid)
	if paid < charged {
		return nil, InsufficientPaymentf("insufficient payment: required %.2f, received %.2f", charged, paid)
	}
	return &Payment{
		AmountCharged: charged,
		AmountPaid:    paid,
		Balance:       round2(paid - charged),
	}, nil
}

func activeClaims(tx *gorm.DB, showtimeID, excludeReservationID uint) *gorm.DB {
	q := tx.
		Model(&models.ReservedSeat{}).
		Joins("JOIN reservations ON reservations.id = reserved_seats.reservation_id").
		Where("reserved_seats.showtime_id = ?", showtimeID).
		Where("reservations.status <> ?", types.RESERVATION_CANCELED).
		Where("reservations.deleted_at IS NULL")
	if excludeReservationID > 0 {
		q = q.Where("reserved_seats.reservation_id <> ?", excludeReservationID)
	}
	return q
}

// DetectConflicts rejects the request if any requested seat already holds a
// claim for the showtime.
func DetectConflicts(tx *gorm.DB, showtimeID uint, seatIDs []uint, excludeReservationID uint) error {
	var taken []uint
	err := activeClaims(tx, showtimeID, excludeReservationID).
		Where("reserved_seats.seat_id IN ?", seatIDs).
		Pluck("reserved_seats.seat_id", &taken).
		Error
	if err != nil {
		return err
	}
	if len(taken) > 0 {
		return Conflictf("seats already reserved: %s", joinIDs(taken))
	}
	return nil
}

// ReservedSeatIDs lists the seats holding an active claim for a showtime.
func ReservedSeatIDs(tx *gorm.DB, showtimeID uint) ([]uint, error) {
	var ids []uint
	err := activeClaims(tx, showtimeID, 0).
		Pluck("reserved_seats.seat_id", &ids).
		Error
	return ids, err
}

func capacityMessage(remaining int64) string {
	switch remaining {
	case 0:
		return "no seats remaining for this showtime"
	case 1:
		return "only 1 seat remaining for this showtime"
	default:
		return "only " + strconv.FormatInt(remaining, 10) + " seats remaining for this showtime"
	}
}

// GuardCapacity rejects the request if granting it would push the count of
// active claims past the auditorium's capacity.
func GuardCapacity(tx *gorm.DB, showtime *models.Showtime, requested int, excludeReservationID uint) error {
	var claimed int64
	err := activeClaims(tx, showtime.ID, excludeReservationID).
		Count(&claimed).
		Error
	if err != nil {
		return err
	}
	remaining := int64(showtime.Auditorium.Capacity) - claimed
	if remaining < 0 {
		remaining = 0
	}
	if int64(requested) > remaining {
		return CapacityExceededf("%s", capacityMessage(remaining))
	}
	return nil
}

// validateTarget replays the full validation sequence against a target
// state: showtime, seat inventory, payment, conflicts, capacity. Any
// rejection leaves nothing written.
func validateTarget(tx *gorm.DB, target BookingTarget, now time.Time) (*models.Showtime, []models.Seat, *Payment, error) {
	showtime, err := ValidateShowtime(tx, target.ShowtimeID, now)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := tx.Where(&models.Auditorium{ID: showtime.AuditoriumID}).First(&showtime.Auditorium).Error; err != nil {
		return nil, nil, nil, err
	}
	seats, err := CheckSeats(tx, showtime.AuditoriumID, target.SeatIDs)
	if err != nil {
		return nil, nil, nil, err
	}
	payment, err := ReconcilePayment(target.AmountPaid, len(target.SeatIDs), showtime.Price)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := DetectConflicts(tx, target.ShowtimeID, target.SeatIDs, target.ExcludeReservationID); err != nil {
		return nil, nil, nil, err
	}
	if err := GuardCapacity(tx, showtime, len(target.SeatIDs), target.ExcludeReservationID); err != nil {
		return nil, nil, nil, err
	}
	return showtime, seats, payment, nil
}

func insertClaims(tx *gorm.DB, reservationID, showtimeID uint, seats []models.Seat) ([]models.ReservedSeat, error) {
	claims := make([]models.ReservedSeat, 0, len(seats))
	for _, seat := range seats {
		claims = append(claims, models.ReservedSeat{
			ReservationID: reservationID,
			ShowtimeID:    showtimeID,
			SeatID:        seat.ID,
		})
	}
	if err := tx.Create(&claims).Error; err != nil {
		// The composite unique index on (showtime_id, seat_id) is the
		// storage-level backstop. A loser here raced another writer.
		if isDuplicateKey(err) {
			return nil, Conflictf("seats already reserved: %s", joinIDs(seatIDsOf(seats)))
		}
		return nil, err
	}
	for i := range claims {
		claims[i].Seat = seats[i]
	}
	return claims, nil
}

func seatIDsOf(seats []models.Seat) []uint {
	ids := make([]uint, 0, len(seats))
	for _, seat := range seats {
		ids = append(ids, seat.ID)
	}
	return ids
}

// CreateReservation runs the booking transaction: validate the target under
// the showtime lock, then write the reservation and its seat claims
// atomically.
func CreateReservation(ctx context.Context, userID uint, body *types.CreateReservationRequestBody) (*models.Reservation, *Payment, error) {
	conn := db.GetDb()
	var reservation *models.Reservation
	var payment *Payment
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		showtime, seats, pay, err := validateTarget(tx, BookingTarget{
			ShowtimeID: body.ShowtimeID,
			SeatIDs:    body.SeatIDs,
			AmountPaid: body.AmountPaid,
		}, time.Now())
		if err != nil {
			return err
		}
		res := models.Reservation{
			UserID:        userID,
			ShowtimeID:    showtime.ID,
			Status:        types.RESERVATION_CONFIRMED,
			AmountCharged: pay.AmountCharged,
			AmountPaid:    pay.AmountPaid,
			Code:          uuid.NewString(),
		}
		if err := tx.Create(&res).Error; err != nil {
			return err
		}
		claims, err := insertClaims(tx, res.ID, showtime.ID, seats)
		if err != nil {
			return err
		}
		res.Showtime = *showtime
		res.ReservedSeats = claims
		reservation = &res
		payment = pay
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	lib.DropSeatMap(reservation.ShowtimeID)
	go models.ReservationConfirmedProducer(reservation.ID, map[string]any{
		"reservation": reservation.ID,
		"showtime":    reservation.ShowtimeID,
		"user":        reservation.UserID,
		"seats":       len(reservation.ReservedSeats),
	})
	return reservation, payment, nil
}

// UpdateReservation re-resolves the reservation's target state from the
// request, replays the full validation against it, and swaps the seat
// claims. The whole transaction runs under a deadline so a stuck lock
// surfaces as a retryable failure instead of hanging the caller.
func UpdateReservation(ctx context.Context, userID, reservationID uint, body *types.UpdateReservationRequestBody) (*models.Reservation, *Payment, error) {
	if body.Status != nil && *body.Status == string(types.RESERVATION_CANCELED) {
		res, err := CancelReservation(ctx, userID, reservationID)
		if err != nil {
			return nil, nil, err
		}
		return res, nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, updateTimeout)
	defer cancel()

	conn := db.GetDb()
	var reservation *models.Reservation
	var payment *Payment
	var previousShowtimeID uint
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		var res models.Reservation
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
			Where(&models.Reservation{ID: reservationID}).
			First(&res).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("reservation with id %d not found", reservationID)
			}
			return err
		}
		if res.UserID != userID {
			return NotFoundf("reservation with id %d not found", reservationID)
		}
		if res.Status == types.RESERVATION_CANCELED {
			return InvalidStatef("reservation %d is already cancelled", reservationID)
		}
		previousShowtimeID = res.ShowtimeID

		target := BookingTarget{
			ShowtimeID:           res.ShowtimeID,
			AmountPaid:           res.AmountPaid,
			ExcludeReservationID: res.ID,
		}
		if body.ShowtimeID != nil {
			target.ShowtimeID = *body.ShowtimeID
		}
		if body.SeatIDs != nil {
			target.SeatIDs = body.SeatIDs
		} else {
			if err := tx.
				Model(&models.ReservedSeat{}).
				Where(&models.ReservedSeat{ReservationID: res.ID}).
				Pluck("seat_id", &target.SeatIDs).
				Error; err != nil {
				return err
			}
		}
		if body.AmountPaid != nil {
			target.AmountPaid = *body.AmountPaid
		}
		if target.ShowtimeID != res.ShowtimeID {
			var previous models.Showtime
			if err := tx.Where(&models.Showtime{ID: res.ShowtimeID}).First(&previous).Error; err != nil {
				return err
			}
			if previous.Started(now) {
				return InvalidStatef("showtime %d has already started", previous.ID)
			}
		}

		showtime, seats, pay, err := validateTarget(tx, target, now)
		if err != nil {
			return err
		}
		if err := tx.
			Where(&models.ReservedSeat{ReservationID: res.ID}).
			Delete(&models.ReservedSeat{}).
			Error; err != nil {
			return err
		}
		claims, err := insertClaims(tx, res.ID, showtime.ID, seats)
		if err != nil {
			return err
		}
		updates := map[string]any{
			"showtime_id":    showtime.ID,
			"amount_charged": pay.AmountCharged,
			"amount_paid":    pay.AmountPaid,
		}
		if err := tx.Model(&models.Reservation{}).Where(&models.Reservation{ID: res.ID}).Updates(updates).Error; err != nil {
			return err
		}
		res.ShowtimeID = showtime.ID
		res.AmountCharged = pay.AmountCharged
		res.AmountPaid = pay.AmountPaid
		res.Showtime = *showtime
		res.ReservedSeats = claims
		reservation = &res
		payment = pay
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			log.Printf("Error updating reservation %d: %s\n", reservationID, err.Error())
			return nil, nil, Internalf("reservation update timed out, please retry")
		}
		return nil, nil, err
	}
	lib.DropSeatMap(previousShowtimeID)
	if reservation.ShowtimeID != previousShowtimeID {
		lib.DropSeatMap(reservation.ShowtimeID)
	}
	return reservation, payment, nil
}

// CancelReservation flips the reservation to cancelled and deletes its seat
// claims so the seats become bookable again in the same instant.
func CancelReservation(ctx context.Context, userID, reservationID uint) (*models.Reservation, error) {
	conn := db.GetDb()
	var reservation *models.Reservation
	err := conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var res models.Reservation
		err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Table: clause.Table{Name: clause.CurrentTable}}).
			Where(&models.Reservation{ID: reservationID}).
			First(&res).
			Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NotFoundf("reservation with id %d not found", reservationID)
			}
			return err
		}
		if res.UserID != userID {
			return NotFoundf("reservation with id %d not found", reservationID)
		}
		if res.Status == types.RESERVATION_CANCELED {
			return InvalidStatef("reservation %d is already cancelled", reservationID)
		}
		var showtime models.Showtime
		if err := tx.Where(&models.Showtime{ID: res.ShowtimeID}).First(&showtime).Error; err != nil {
			return err
		}
		if showtime.Started(time.Now()) {
			return InvalidStatef("showtime %d has already started", showtime.ID)
		}
		if err := tx.
			Where(&models.ReservedSeat{ReservationID: res.ID}).
			Delete(&models.ReservedSeat{}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Model(&models.Reservation{}).
			Where(&models.Reservation{ID: res.ID}).
			Update("status", types.RESERVATION_CANCELED).
			Error; err != nil {
			return err
		}
		res.Status = types.RESERVATION_CANCELED
		res.Showtime = showtime
		res.ReservedSeats = nil
		reservation = &res
		return nil
	})
	if err != nil {
		return nil, err
	}
	lib.DropSeatMap(reservation.ShowtimeID)
	go models.ReservationCanceledProducer(reservation.ID, map[string]any{
		"reservation": reservation.ID,
		"showtime":    reservation.ShowtimeID,
		"user":        reservation.UserID,
	})
	return reservation, nil
}

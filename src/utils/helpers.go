package utils

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strconv"
	"time"

	"mrs/src/common"
	"mrs/src/config"
	"mrs/src/db"
	"mrs/src/lib"
	"mrs/src/models"
	"mrs/src/types"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

var jwtKey = []byte(os.Getenv("JWT_SECRET"))

func GenerateJWT(email string, userId uint) (string, error) {
	expiry := time.Now().Add(24 * time.Hour)
	claims := &types.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userId), 10),
			ExpiresAt: jwt.NewNumericDate(expiry),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtKey)
}

func CreateMovie(params *types.CreateMovieRequestBody) (*models.Movie, error) {
	conn := db.GetDb()
	var movie *models.Movie
	err := conn.Transaction(func(tx *gorm.DB) error {
		var existing models.Movie
		err := tx.
			Where(&models.Movie{Title: params.Title}).
			First(&existing).
			Error
		if err == nil {
			return common.Conflictf("Title is already in use")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		newMovie := models.Movie{
			Title:        params.Title,
			Slug:         slug.Make(params.Title),
			Genre:        params.Genre,
			DurationMins: params.DurationMins,
		}
		if params.Description != "" {
			newMovie.Description = &params.Description
		}
		if err := tx.Create(&newMovie).Error; err != nil {
			return err
		}
		movie = &newMovie
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movie, nil
}

// CreateShowtime schedules a movie in an auditorium. Two showtimes may not
// overlap in the same auditorium.
func CreateShowtime(params *types.CreateShowtimeRequestBody) (*models.Showtime, error) {
	startTime, err := time.Parse(config.TIME_PARSE_FORMAT, params.StartTime)
	if err != nil {
		return nil, common.InvalidInputf("invalid start_time: %s", err.Error())
	}
	endTime, err := time.Parse(config.TIME_PARSE_FORMAT, params.EndTime)
	if err != nil {
		return nil, common.InvalidInputf("invalid end_time: %s", err.Error())
	}
	conn := db.GetDb()
	var showtime *models.Showtime
	err = conn.Transaction(func(tx *gorm.DB) error {
		var movie models.Movie
		if err := tx.Where(&models.Movie{ID: params.MovieID}).First(&movie).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NotFoundf("movie with id %d not found", params.MovieID)
			}
			return err
		}
		var auditorium models.Auditorium
		if err := tx.Where(&models.Auditorium{ID: params.AuditoriumID}).First(&auditorium).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NotFoundf("auditorium with id %d not found", params.AuditoriumID)
			}
			return err
		}
		var overlapping int64
		err := tx.
			Model(&models.Showtime{}).
			Where("auditorium_id = ?", params.AuditoriumID).
			Where("start_time < ? AND end_time > ?", endTime, startTime).
			Count(&overlapping).
			Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return common.Conflictf("auditorium %d has an overlapping showtime", params.AuditoriumID)
		}
		newShowtime := models.Showtime{
			MovieID:      movie.ID,
			AuditoriumID: auditorium.ID,
			StartTime:    startTime,
			EndTime:      endTime,
			Price:        params.Price,
		}
		if err := tx.Create(&newShowtime).Error; err != nil {
			return err
		}
		newShowtime.Movie = movie
		newShowtime.Auditorium = auditorium
		showtime = &newShowtime
		return nil
	})
	if err != nil {
		return nil, err
	}
	return showtime, nil
}

func UpdateShowtime(id uint, params *types.UpdateShowtimeRequestBody) (*models.Showtime, error) {
	conn := db.GetDb()
	var showtime models.Showtime
	err := conn.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(&models.Showtime{ID: id}).First(&showtime).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return common.NotFoundf("showtime with id %d not found", id)
			}
			return err
		}
		startTime := showtime.StartTime
		endTime := showtime.EndTime
		if params.StartTime != nil {
			parsed, err := time.Parse(config.TIME_PARSE_FORMAT, *params.StartTime)
			if err != nil {
				return common.InvalidInputf("invalid start_time: %s", err.Error())
			}
			startTime = parsed
		}
		if params.EndTime != nil {
			parsed, err := time.Parse(config.TIME_PARSE_FORMAT, *params.EndTime)
			if err != nil {
				return common.InvalidInputf("invalid end_time: %s", err.Error())
			}
			endTime = parsed
		}
		if !endTime.After(startTime) {
			return common.InvalidInputf("end_time must be after start_time")
		}
		var overlapping int64
		err := tx.
			Model(&models.Showtime{}).
			Where("auditorium_id = ? AND id <> ?", showtime.AuditoriumID, showtime.ID).
			Where("start_time < ? AND end_time > ?", endTime, startTime).
			Count(&overlapping).
			Error
		if err != nil {
			return err
		}
		if overlapping > 0 {
			return common.Conflictf("auditorium %d has an overlapping showtime", showtime.AuditoriumID)
		}
		updates := map[string]any{
			"start_time": startTime,
			"end_time":   endTime,
		}
		if params.MovieID != nil {
			updates["movie_id"] = *params.MovieID
		}
		if params.Price != nil {
			updates["price"] = *params.Price
		}
		if err := tx.Model(&models.Showtime{}).Where(&models.Showtime{ID: showtime.ID}).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where(&models.Showtime{ID: showtime.ID}).First(&showtime).Error
	})
	if err != nil {
		return nil, err
	}
	return &showtime, nil
}

func GetOwnReservations(userId uint) ([]models.Reservation, error) {
	conn := db.GetDb()
	var reservations []models.Reservation
	err := conn.
		Where(&models.Reservation{UserID: userId}).
		Preload("Showtime").
		Preload("Showtime.Movie").
		Preload("ReservedSeats").
		Preload("ReservedSeats.Seat").
		Order("created_at DESC").
		Find(&reservations).
		Error
	if err != nil {
		return nil, err
	}
	return reservations, nil
}

type SeatAvailability struct {
	SeatID   uint   `json:"seat_id"`
	Row      string `json:"row"`
	Number   uint   `json:"number"`
	Label    string `json:"label"`
	Reserved bool   `json:"reserved"`
}

// GetSeatAvailability returns the seat map for a showtime. The map is
// cached in redis and evicted whenever a reservation for the showtime
// changes, so cached reads never serve a stale claim.
func GetSeatAvailability(showtimeId uint) ([]SeatAvailability, error) {
	rd := lib.GetRedisClient()
	key := lib.SeatMapKey(showtimeId)
	if rd != nil {
		cached, err := rd.Get(context.Background(), key).Result()
		if err == nil {
			var seatMap []SeatAvailability
			if err := json.Unmarshal([]byte(cached), &seatMap); err == nil {
				return seatMap, nil
			}
		}
	}
	conn := db.GetDb()
	var showtime models.Showtime
	if err := conn.Where(&models.Showtime{ID: showtimeId}).First(&showtime).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.NotFoundf("showtime with id %d not found", showtimeId)
		}
		return nil, err
	}
	var seats []models.Seat
	err := conn.
		Where(&models.Seat{AuditoriumID: showtime.AuditoriumID}).
		Order("row, number").
		Find(&seats).
		Error
	if err != nil {
		return nil, err
	}
	reservedIds, err := common.ReservedSeatIDs(conn, showtimeId)
	if err != nil {
		return nil, err
	}
	reserved := make(map[uint]bool, len(reservedIds))
	for _, id := range reservedIds {
		reserved[id] = true
	}
	seatMap := make([]SeatAvailability, 0, len(seats))
	for _, seat := range seats {
		seatMap = append(seatMap, SeatAvailability{
			SeatID:   seat.ID,
			Row:      seat.Row,
			Number:   seat.Number,
			Label:    seat.Label(),
			Reserved: reserved[seat.ID],
		})
	}
	if rd != nil {
		body, err := json.Marshal(seatMap)
		if err == nil {
			if err := rd.SetEx(context.Background(), key, string(body), 2*time.Hour).Err(); err != nil {
				log.Printf("Error caching seat map for showtime %d: %s\n", showtimeId, err.Error())
			}
		}
	}
	return seatMap, nil
}

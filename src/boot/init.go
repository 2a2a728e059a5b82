package boot

import (
	"log"
	"time"

	"mrs/src/db"
	"mrs/src/lib"
	"mrs/src/models"

	"gorm.io/gorm"
)

func InitDb() *gorm.DB {
	db := db.GetDb()

	err := db.AutoMigrate(
		&models.User{},
		&models.Movie{},
		&models.Auditorium{},
		&models.Seat{},
		&models.Showtime{},
		&models.Reservation{},
		&models.ReservedSeat{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}

	return db
}

func InitBroker() {
	if !lib.KafkaEnabled() {
		return
	}
	go lib.KafkaCreateTopics("reservations-confirmed", "reservations-cancelled")
}

func InitScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	id, err := lib.CreateCronJob(EvictStartedShowtimeSeatMaps, time.Minute)
	if err != nil {
		log.Printf("Error running job: %s\n", err.Error())
		return
	}
	log.Printf("Job ID: %s\n", *id)
	sched.Start()
}

func StopScheduler() {
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("Error retrieving Scheduler. Check logs for info")
		return
	}
	err = sched.Shutdown()
	if err != nil {
		log.Println("An error has occurred while stopping Scheduler. Check logs for info")
		return
	}
}

// EvictStartedShowtimeSeatMaps drops cached seat maps for showtimes that
// have started since the previous sweep. Started showtimes take no new
// bookings, so their cached maps are dead weight.
func EvictStartedShowtimeSeatMaps() {
	db := db.GetDb()
	var ids []uint
	now := time.Now()
	err := db.
		Model(&models.Showtime{}).
		Where("start_time BETWEEN ? AND ?", now.Add(-5*time.Minute), now).
		Pluck("id", &ids).
		Error
	if err != nil {
		log.Printf("Error retrieving started showtimes: %s\n", err.Error())
		return
	}
	for _, id := range ids {
		lib.DropSeatMap(id)
	}
}

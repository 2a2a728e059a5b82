package lib

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

func SeatMapKey(showtimeId uint) string {
	return fmt.Sprintf("showtimes:%d:seats", showtimeId)
}

// DropSeatMap evicts the cached seat availability for a showtime. Called
// after any write that changes which seats are claimed.
func DropSeatMap(showtimeId uint) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(context.Background(), SeatMapKey(showtimeId)).Err(); err != nil {
		log.Printf("Error evicting seat map for showtime %d: %s\n", showtimeId, err.Error())
	}
}

package realtime

import (
	"log"

	"github.com/redis/go-redis/v9"
)

// NewRedis builds the client shared by the OTP store and the chat
// notification publisher.
func NewRedis(addr, password string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	log.Printf("Redis client created (addr: %s)\n", addr)
	return rdb
}

// api/database/redis.go
package database

import (
	"log"
	"os"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient opens the Redis client used for snapshot memoization.
// Redis is optional: when REDIS_ADDR is not configured this returns nil and
// the snapshot cache degrades to a no-op.
func NewRedisClient() *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		log.Println("REDIS_ADDR not set; snapshot caching disabled.")
		return nil
	}

	db := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		// ignore parse error silently, default 0
		if n, _ := strconv.Atoi(v); n >= 0 {
			db = n
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASS"),
		DB:       db,
	})
	log.Printf("Redis client configured for %s (db %d).", addr, db)
	return client
}

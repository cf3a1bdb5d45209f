package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var Redis *redis.Client
var Ctx = context.Background()

// InitRedis инициализирует подключение к Redis. Redis используется только
// для кэша статистики, поэтому отсутствие подключения не фатально.
func InitRedis() error {
	host := getEnv("REDIS_HOST", "localhost")
	port := getEnv("REDIS_PORT", "6379")
	password := getEnv("REDIS_PASSWORD", "")
	dbStr := getEnv("REDIS_DB", "0")

	db, err := strconv.Atoi(dbStr)
	if err != nil {
		db = 0
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", host, port),
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := Redis.Ping(Ctx).Err(); err != nil {
		Redis = nil
		return fmt.Errorf("не удалось подключиться к Redis: %w", err)
	}

	log.Println("✅ Успешно подключено к Redis")
	return nil
}

// GetRedis возвращает экземпляр Redis клиента (nil, если не подключен)
func GetRedis() *redis.Client {
	return Redis
}

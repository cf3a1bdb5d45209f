package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// Константы для TTL кэша
const (
	CacheTTLShort  = 5 * time.Minute  // Для часто изменяемых данных
	CacheTTLMedium = 15 * time.Minute // Для умеренно изменяемых данных
	CacheTTLLong   = 1 * time.Hour    // Для редко изменяемых данных
)

// CacheService предоставляет методы для кэширования производных данных
// (статистика, счетчики). Если Redis не подключен, кэширование молча
// пропускается, приложение продолжает работать напрямую с базой.
type CacheService struct {
	redis  *redis.Client
	logger *log.Logger
}

// NewCacheService создает новый экземпляр CacheService
func NewCacheService(redisClient *redis.Client, logger *log.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// Set сохраняет JSON-представление значения в кэш с TTL
func (cs *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if cs.redis == nil {
		if cs.logger != nil {
			cs.logger.Printf("Redis не подключен, пропускаем кэширование для ключа: %s", key)
		}
		return nil
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("ошибка сериализации JSON: %w", err)
	}
	return cs.redis.Set(ctx, key, string(jsonData), ttl).Err()
}

// Get читает значение из кэша в dest. Возвращает false, если ключа нет
// или Redis не подключен.
func (cs *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if cs.redis == nil {
		return false, nil
	}

	jsonData, err := cs.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(jsonData), dest); err != nil {
		return false, fmt.Errorf("ошибка десериализации JSON: %w", err)
	}
	return true, nil
}

// Del удаляет значение из кэша
func (cs *CacheService) Del(ctx context.Context, key string) error {
	if cs.redis == nil {
		return nil
	}
	return cs.redis.Del(ctx, key).Err()
}

// InvalidateStats сбрасывает кэш статистики после записи в журналы
func (cs *CacheService) InvalidateStats(ctx context.Context) error {
	if cs.redis == nil {
		return nil
	}

	keys, err := cs.redis.Keys(ctx, "stats:*").Result()
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return cs.redis.Del(ctx, keys...).Err()
	}
	return nil
}

// StatsCacheKey генерирует ключ кэша статистики
func StatsCacheKey(statsType string) string {
	return fmt.Sprintf("stats:%s", statsType)
}

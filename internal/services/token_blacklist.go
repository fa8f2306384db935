package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Глобальный Redis клиент для черного списка токенов
var blacklistClient *redis.Client

// SetRedisClient устанавливает глобальный Redis клиент для черного списка.
// Если Redis недоступен, logout работает в деградированном режиме:
// токены не отзываются, но остальные операции не затрагиваются.
func SetRedisClient(client *redis.Client) {
	blacklistClient = client
}

func blacklistKey(token string) string {
	return "token_blacklist:" + token
}

// RevokeToken помещает токен в черный список до истечения его срока действия.
func RevokeToken(ctx context.Context, token string, ttl time.Duration) error {
	if blacklistClient == nil {
		return errors.New("redis недоступен, токен не отозван")
	}
	if ttl <= 0 {
		// Токен уже истек, отзывать нечего
		return nil
	}
	if err := blacklistClient.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return fmt.Errorf("ошибка записи токена в черный список: %w", err)
	}
	return nil
}

// IsTokenRevoked проверяет, отозван ли токен. При недоступном Redis
// считаем токен действительным.
func IsTokenRevoked(ctx context.Context, token string) bool {
	if blacklistClient == nil {
		return false
	}
	exists, err := blacklistClient.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false
	}
	return exists > 0
}

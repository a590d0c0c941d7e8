// Package redisdb управляет подключением к Redis.
// Redis используется как кэш таблицы лидеров (sorted set по балансу);
// источником истины остаётся PostgreSQL, при недоступном Redis
// рейтинг считается SQL-запросом.
package redisdb

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/config"
)

// NewClient создаёт клиент Redis и проверяет соединение.
// Ошибка подключения не фатальна для бота: вызывающий может
// продолжить работу без кэша (вернётся клиент, Ping-ошибка в логе).
func NewClient(ctx context.Context, cfg *config.Config) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		log.WithError(err).Warn("Redis недоступен — рейтинг будет считаться по SQL")
	} else {
		log.Info("Подключение к Redis установлено")
	}
	return client
}

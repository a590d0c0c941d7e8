// Package rating — service.go держит таблицу лидеров в Redis
// (отсортированное множество user_id → деньги) и собирает ответы на !топ.
//
// Кэш обновляется двумя путями: точечно после каждой денежной операции
// (Refresh) и полной пересборкой по расписанию (Rebuild). Если Redis
// недоступен, топ считается напрямую из PostgreSQL — медленнее, но верно.
package rating

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/farm-bot/internal/config"
)

// ratingKey — ключ отсортированного множества в Redis.
const ratingKey = "rating:money"

// Service собирает таблицу лидеров.
type Service struct {
	repo    *Repository
	rdb     *redis.Client
	topSize int
}

// NewService создаёт сервис рейтинга. rdb может быть nil — тогда
// все запросы идут в PostgreSQL.
func NewService(repo *Repository, rdb *redis.Client, cfg *config.Config) *Service {
	return &Service{
		repo:    repo,
		rdb:     rdb,
		topSize: cfg.RatingTopSize,
	}
}

// Refresh обновляет балл игрока в кэше. Вызывается после каждой операции,
// меняющей деньги. Ошибки Redis не фатальны: кэш догонит пересборка.
func (s *Service) Refresh(ctx context.Context, userID int64, money decimal.Decimal) {
	if s.rdb == nil {
		return
	}
	score, _ := money.Float64()
	err := s.rdb.ZAdd(ctx, ratingKey, redis.Z{
		Score:  score,
		Member: strconv.FormatInt(userID, 10),
	}).Err()
	if err != nil {
		log.WithError(err).Debug("Не удалось обновить рейтинг в Redis")
	}
}

// Remove убирает игрока из кэша (бан или удаление).
func (s *Service) Remove(ctx context.Context, userID int64) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.ZRem(ctx, ratingKey, strconv.FormatInt(userID, 10)).Err(); err != nil {
		log.WithError(err).Debug("Не удалось убрать игрока из рейтинга")
	}
}

// Board возвращает топ и позицию запросившего игрока.
func (s *Service) Board(ctx context.Context, requesterID int64) (*Board, error) {
	board, err := s.boardFromRedis(ctx, requesterID)
	if err == nil {
		return board, nil
	}
	if s.rdb != nil {
		log.WithError(err).Warn("Рейтинг из Redis недоступен, считаем по SQL")
	}
	return s.boardFromSQL(ctx, requesterID)
}

func (s *Service) boardFromRedis(ctx context.Context, requesterID int64) (*Board, error) {
	if s.rdb == nil {
		return nil, redis.ErrClosed
	}

	zs, err := s.rdb.ZRevRangeWithScores(ctx, ratingKey, 0, int64(s.topSize-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(zs) == 0 {
		// Пустой кэш неотличим от пустой базы — уточняем по SQL
		return nil, redis.Nil
	}

	ids := make([]int64, 0, len(zs))
	for _, z := range zs {
		id, err := strconv.ParseInt(z.Member.(string), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	names, err := s.repo.NamesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	board := &Board{}
	for i, z := range zs {
		id, err := strconv.ParseInt(z.Member.(string), 10, 64)
		if err != nil {
			continue
		}
		board.Top = append(board.Top, Entry{
			Rank:   i + 1,
			UserID: id,
			Name:   names[id],
			Money:  decimal.NewFromFloat(z.Score).Round(2),
		})
	}

	// Позиция запросившего — из того же множества
	rank, err := s.rdb.ZRevRank(ctx, ratingKey, strconv.FormatInt(requesterID, 10)).Result()
	if err == nil {
		score, serr := s.rdb.ZScore(ctx, ratingKey, strconv.FormatInt(requesterID, 10)).Result()
		if serr == nil {
			board.Requester = &Entry{
				Rank:   int(rank) + 1,
				UserID: requesterID,
				Money:  decimal.NewFromFloat(score).Round(2),
			}
		}
	}
	return board, nil
}

func (s *Service) boardFromSQL(ctx context.Context, requesterID int64) (*Board, error) {
	top, err := s.repo.TopByMoney(ctx, s.topSize)
	if err != nil {
		return nil, err
	}
	board := &Board{Top: top}
	if requester, err := s.repo.RankOf(ctx, requesterID); err == nil {
		board.Requester = requester
	}
	return board, nil
}

// Rebuild полностью пересобирает кэш из PostgreSQL.
// Вызывается планировщиком; расхождения от потерянных Refresh исчезают здесь.
func (s *Service) Rebuild(ctx context.Context) error {
	if s.rdb == nil {
		return nil
	}

	balances, err := s.repo.AllBalances(ctx)
	if err != nil {
		return err
	}

	members := make([]redis.Z, 0, len(balances))
	for id, money := range balances {
		score, _ := money.Float64()
		members = append(members, redis.Z{
			Score:  score,
			Member: strconv.FormatInt(id, 10),
		})
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, ratingKey)
	if len(members) > 0 {
		pipe.ZAdd(ctx, ratingKey, members...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return err
	}

	log.WithField("players", len(members)).Debug("Рейтинг пересобран")
	return nil
}

// WarmUp — первичная загрузка кэша при старте с небольшим таймаутом,
// чтобы не задерживать запуск бота из-за медленного Redis.
func (s *Service) WarmUp(parent context.Context) {
	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()
	if err := s.Rebuild(ctx); err != nil {
		log.WithError(err).Warn("Не удалось прогреть кэш рейтинга")
	}
}

// Package admin — service.go содержит аутентификацию, сессии
// и логику корректировки счетов игроков.
package admin

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/argon2"

	"serotonyl.ru/farm-bot/internal/common"
	"serotonyl.ru/farm-bot/internal/config"
	"serotonyl.ru/farm-bot/internal/features/farm"
	"serotonyl.ru/farm-bot/internal/features/players"
)

// Service управляет панелью оператора.
type Service struct {
	repo       *Repository
	playerRepo *players.Repository
	cfg        *config.Config
	locks      *common.KeyedMutex
	states     map[int64]*AdminState // Состояния диалогов (in-memory)
	statesMu   sync.RWMutex
}

// NewService создаёт сервис панели оператора.
func NewService(repo *Repository, playerRepo *players.Repository, cfg *config.Config, locks *common.KeyedMutex) *Service {
	return &Service{
		repo:       repo,
		playerRepo: playerRepo,
		cfg:        cfg,
		locks:      locks,
		states:     make(map[int64]*AdminState),
	}
}

// Authorize проверяет права оператора. Единственная точка входа
// для привилегированных команд: не оператор — ErrUnauthorized.
func (s *Service) Authorize(userID int64) error {
	if !s.cfg.IsOperator(userID) {
		return common.ErrUnauthorized
	}
	return nil
}

// VerifyPassword проверяет пароль оператора (Argon2id).
// Защита от brute-force: 3 неудачные попытки = блокировка на 1 час.
func (s *Service) VerifyPassword(ctx context.Context, userID int64, password string) error {
	attempts, err := s.repo.GetRecentAttempts(ctx, userID, 1*time.Hour)
	if err != nil {
		return err
	}
	if attempts >= 3 {
		return common.ErrTooManyAttempts
	}

	match := verifyArgon2id(password, s.cfg.AdminPasswordHash)
	if err := s.repo.LogAttempt(ctx, userID, match); err != nil {
		// Без записи попытки счётчик brute-force не работает
		log.WithError(err).WithField("user_id", userID).Error("Не удалось записать попытку входа")
	}

	if !match {
		return common.ErrWrongPassword
	}

	token := generateSecureToken()
	session := &AdminSession{
		UserID:       userID,
		SessionToken: token,
		ExpiresAt:    time.Now().Add(24 * time.Hour),
	}
	return s.repo.CreateSession(ctx, session)
}

// HasActiveSession проверяет, есть ли у пользователя активная сессия.
func (s *Service) HasActiveSession(ctx context.Context, userID int64) bool {
	session, err := s.repo.GetActiveSession(ctx, userID)
	return err == nil && session != nil
}

// Logout деактивирует сессию оператора.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	s.ClearState(userID)
	return s.repo.DeactivateSession(ctx, userID)
}

// GetState возвращает текущее состояние диалога.
func (s *Service) GetState(userID int64) *AdminState {
	s.statesMu.RLock()
	defer s.statesMu.RUnlock()

	state, ok := s.states[userID]
	if !ok {
		return nil
	}
	if time.Now().After(state.ExpiresAt) {
		return nil
	}
	return state
}

// SetState устанавливает состояние диалога с 5-минутным таймаутом.
func (s *Service) SetState(userID int64, stateName string) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()

	s.states[userID] = &AdminState{
		State:     stateName,
		ExpiresAt: time.Now().Add(5 * time.Minute),
	}
}

// ClearState сбрасывает состояние диалога.
func (s *Service) ClearState(userID int64) {
	s.statesMu.Lock()
	defer s.statesMu.Unlock()
	delete(s.states, userID)
}

// Adjust корректирует поле аккаунта игрока.
//
// Правила:
//   - вызывающий должен быть оператором с активной сессией;
//   - value для add/sub строго положительно, отрицательный set — ноль;
//   - количество животных — только целое;
//   - sub клампится в ноль (в минус счета не уходят);
//   - денежные корректировки попадают в журнал операций.
func (s *Service) Adjust(ctx context.Context, operatorID int64, targetUsername string, field Field, op Op, value decimal.Decimal) (*AdjustResult, error) {
	if err := s.Authorize(operatorID); err != nil {
		return nil, err
	}
	if !s.HasActiveSession(ctx, operatorID) {
		return nil, common.ErrUnauthorized
	}

	switch op {
	case OpAdd, OpSub:
		if value.LessThanOrEqual(decimal.Zero) {
			return nil, common.ErrInvalidAmount
		}
	case OpSet:
		// Отрицательное «установить» приводим к нулю
		if value.IsNegative() {
			value = decimal.Zero
		}
	default:
		return nil, common.ErrUnknownField
	}

	target, err := s.playerRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, common.ErrTargetNotFound
	}

	s.locks.Lock(target.UserID)
	defer s.locks.Unlock(target.UserID)

	result := &AdjustResult{
		TargetID:   target.UserID,
		TargetName: target.DisplayName(),
		Field:      field,
	}

	switch field.Kind {
	case FieldMoney:
		result.NewValue, err = s.repo.AdjustMoney(ctx, target.UserID, op, value.Round(2))
	case FieldResource:
		result.NewValue, err = s.repo.AdjustResource(ctx, target.UserID, field.Key, op, value.Round(2))
	case FieldProducer:
		if !value.IsInteger() {
			return nil, common.ErrInvalidAmount
		}
		var count int
		count, err = s.repo.AdjustProducer(ctx, target.UserID, field.Key, op, int(value.IntPart()))
		result.NewValue = decimal.NewFromInt(int64(count))
	default:
		return nil, common.ErrUnknownField
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"operator": operatorID,
		"target":   target.UserID,
		"field":    field.Key,
		"op":       op,
		"value":    value.String(),
	}).Warn("Корректировка оператором")

	return result, nil
}

// SetBanned банит или разбанивает игрока.
func (s *Service) SetBanned(ctx context.Context, operatorID int64, targetUsername string, banned bool) (*players.Player, error) {
	if err := s.Authorize(operatorID); err != nil {
		return nil, err
	}
	if !s.HasActiveSession(ctx, operatorID) {
		return nil, common.ErrUnauthorized
	}

	target, err := s.playerRepo.GetByUsername(ctx, targetUsername)
	if err != nil {
		return nil, common.ErrTargetNotFound
	}
	if err := s.playerRepo.SetBanned(ctx, target.UserID, banned); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"operator": operatorID,
		"target":   target.UserID,
		"banned":   banned,
	}).Warn("Смена флага бана")

	return target, nil
}

// ParseField разбирает название поля из команды оператора.
// Принимает "деньги"/"money", русские и английские названия ресурсов
// ("яйца", "eggs") и id животных из каталога ("chicken").
func ParseField(name string) (Field, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Field{}, common.ErrUnknownField
	}
	if name == "деньги" || name == "money" {
		return Field{Kind: FieldMoney}, nil
	}
	if res, ok := farm.ResourceByName(name); ok {
		return Field{Kind: FieldResource, Key: string(res.Kind)}, nil
	}
	if pr, ok := farm.ProducerByID(name); ok {
		return Field{Kind: FieldProducer, Key: pr.ID}, nil
	}
	return Field{}, common.ErrUnknownField
}

// ParseOp разбирает операцию корректировки из команды.
func ParseOp(name string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "дать", "add", "+":
		return OpAdd, nil
	case "забрать", "sub", "-":
		return OpSub, nil
	case "установить", "set", "=":
		return OpSet, nil
	}
	return "", common.ErrUnknownField
}

// --- Криптографические утилиты ---

// verifyArgon2id проверяет пароль по хешу Argon2id.
// Формат хеша: $argon2id$v=19$m=65536,t=3,p=2$<salt_base64>$<hash_base64>
func verifyArgon2id(password, encodedHash string) bool {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		log.Error("Некорректный формат хеша Argon2id")
		return false
	}

	var memory uint32
	var iterations uint32
	var parallelism uint8
	_, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism)
	if err != nil {
		log.WithError(err).Error("Ошибка парсинга параметров Argon2id")
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования соли")
		return false
	}

	expectedHash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		log.WithError(err).Error("Ошибка декодирования хеша")
		return false
	}

	computedHash := argon2.IDKey([]byte(password), salt, iterations, memory, parallelism, uint32(len(expectedHash)))

	// Сравнение в постоянном времени (защита от timing attack)
	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1
}

// generateSecureToken генерирует криптографически безопасный токен сессии.
func generateSecureToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
	}
	return base64.URLEncoding.EncodeToString(b)
}

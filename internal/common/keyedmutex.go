// Package common — keyedmutex.go реализует пер-игровую сериализацию команд.
// Каждая операция экономики — это «прочитал-посчитал-записал» без версионирования,
// поэтому две параллельные команды одного игрока могут потерять обновления.
// Мьютекс по ключу (user_id) гарантирует, что команды одного игрока
// выполняются строго по очереди, а разные игроки работают параллельно.
package common

import "sync"

// KeyedMutex — набор мьютексов, по одному на ключ (user_id).
// Мьютексы создаются при первом захвате и удаляются, когда никто не ждёт,
// чтобы карта не росла бесконечно.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[int64]*keyLock
}

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// NewKeyedMutex создаёт пустой набор мьютексов.
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[int64]*keyLock)}
}

// Lock захватывает мьютекс для ключа id.
func (km *KeyedMutex) Lock(id int64) {
	km.mu.Lock()
	l, ok := km.locks[id]
	if !ok {
		l = &keyLock{}
		km.locks[id] = l
	}
	l.refs++
	km.mu.Unlock()

	l.mu.Lock()
}

// Unlock освобождает мьютекс для ключа id.
func (km *KeyedMutex) Unlock(id int64) {
	km.mu.Lock()
	l := km.locks[id]
	l.refs--
	if l.refs == 0 {
		delete(km.locks, id)
	}
	km.mu.Unlock()

	l.mu.Unlock()
}

// LockPair захватывает мьютексы двух игроков в порядке возрастания id.
// Фиксированный глобальный порядок исключает дедлок, когда два перевода
// идут навстречу друг другу (A→B и B→A одновременно).
func (km *KeyedMutex) LockPair(a, b int64) {
	if a == b {
		km.Lock(a)
		return
	}
	if b < a {
		a, b = b, a
	}
	km.Lock(a)
	km.Lock(b)
}

// UnlockPair освобождает мьютексы пары в обратном порядке.
func (km *KeyedMutex) UnlockPair(a, b int64) {
	if a == b {
		km.Unlock(a)
		return
	}
	if b < a {
		a, b = b, a
	}
	km.Unlock(b)
	km.Unlock(a)
}

package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Проверяем, что операции одного ключа сериализуются:
// инкременты без внутренней синхронизации не должны теряться.
func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock(42)
			counter++
			km.Unlock(42)
		}()
	}
	wg.Wait()

	assert.Equal(t, 200, counter)
}

// Встречные пары (A→B и B→A) не должны дедлочиться:
// LockPair всегда захватывает мьютексы в порядке возрастания id.
func TestKeyedMutexPairNoDeadlock(t *testing.T) {
	km := NewKeyedMutex()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			km.LockPair(1, 2)
			km.UnlockPair(1, 2)
		}()
		go func() {
			defer wg.Done()
			km.LockPair(2, 1)
			km.UnlockPair(2, 1)
		}()
	}
	wg.Wait()
}

// После освобождения всех ключей карта мьютексов должна опустеть.
func TestKeyedMutexCleansUp(t *testing.T) {
	km := NewKeyedMutex()
	km.Lock(7)
	km.Unlock(7)
	km.LockPair(3, 9)
	km.UnlockPair(3, 9)

	km.mu.Lock()
	defer km.mu.Unlock()
	assert.Empty(t, km.locks)
}

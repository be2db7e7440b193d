package service

import (
	"sync"

	"github.com/google/uuid"
)

// LocationLocks сериализует мутирующие обработки по локации: два
// одновременных колбэка не должны оба перевести одну и ту же сессию.
// Внутри критической секции каждое решение заново выводится из
// персистентного состояния, поэтому блокировка нужна только на время
// одной логической единицы read-then-write.
type LocationLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewLocationLocks() *LocationLocks {
	return &LocationLocks{locks: make(map[uuid.UUID]*sync.Mutex)}
}

// Lock захватывает мьютекс локации и возвращает функцию освобождения
func (l *LocationLocks) Lock(locationID uuid.UUID) func() {
	l.mu.Lock()
	m, ok := l.locks[locationID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[locationID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

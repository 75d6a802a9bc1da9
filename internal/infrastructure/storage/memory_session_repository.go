package storage

import (
	"context"
	"sync"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

// MemorySessionRepository in-memory хранилище сессий: состояние пользователя
// и снимки, загруженные до запуска проверки
type MemorySessionRepository struct {
	mu      sync.RWMutex
	users   map[int64]*entity.User
	pending map[int64][]*entity.Acquisition
}

// NewMemorySessionRepository создаёт новое in-memory хранилище
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		users:   make(map[int64]*entity.User),
		pending: make(map[int64][]*entity.Acquisition),
	}
}

// Get возвращает копию пользователя, создаёт нового если не найден
func (r *MemorySessionRepository) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	r.mu.RLock()
	user, exists := r.users[userID]
	if exists {
		cp := *user
		r.mu.RUnlock()
		return &cp, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.user(userID, chatID)
	return &cp, nil
}

// Update изменяет копию пользователя под блокировкой и сохраняет её при успехе
func (r *MemorySessionRepository) Update(ctx context.Context, userID, chatID int64, fn func(u *entity.User) error) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *r.user(userID, chatID)
	if err := fn(&cp); err != nil {
		return nil, err
	}
	r.users[userID] = &cp

	out := cp
	return &out, nil
}

// user находит или создаёт пользователя; вызывается под r.mu.Lock
func (r *MemorySessionRepository) user(userID, chatID int64) *entity.User {
	if user, exists := r.users[userID]; exists {
		return user
	}
	user := entity.NewUser(userID, chatID)
	r.users[userID] = user
	return user
}

// Enqueue добавляет снимок в очередь пользователя
func (r *MemorySessionRepository) Enqueue(ctx context.Context, userID int64, acq *entity.Acquisition) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pending[userID] = append(r.pending[userID], acq)
	return len(r.pending[userID]), nil
}

// Drain забирает и очищает очередь пользователя
func (r *MemorySessionRepository) Drain(ctx context.Context, userID int64) ([]*entity.Acquisition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acqs := r.pending[userID]
	delete(r.pending, userID)
	return acqs, nil
}

// Len количество снимков в очереди пользователя
func (r *MemorySessionRepository) Len(ctx context.Context, userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pending[userID])
}

// Проверка реализации интерфейсов
var (
	_ port.UserRepository   = (*MemorySessionRepository)(nil)
	_ port.AcquisitionQueue = (*MemorySessionRepository)(nil)
)

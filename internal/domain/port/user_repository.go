package port

import (
	"context"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// UserRepository хранилище сессий операторов
type UserRepository interface {
	// Get возвращает копию пользователя, создаёт нового если не найден
	Get(ctx context.Context, userID, chatID int64) (*entity.User, error)

	// Update атомарно изменяет пользователя. Если fn вернула ошибку, изменения отбрасываются.
	Update(ctx context.Context, userID, chatID int64, fn func(u *entity.User) error) (*entity.User, error)
}

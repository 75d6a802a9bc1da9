package app

import (
	"context"
	"time"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

// UserService управляет состоянием проверки у оператора
type UserService struct {
	repo port.UserRepository
	now  func() time.Time
}

func NewUserService(repo port.UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

func (s *UserService) Get(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Get(ctx, userID, chatID)
}

// transition переводит пользователя в состояние, если переход допустим
func (s *UserService) transition(ctx context.Context, userID, chatID int64, to entity.UserState) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) error {
		return u.Transition(to, s.now())
	})
}

// BeginCheck переводит пользователя в ожидание DICOM-снимков
func (s *UserService) BeginCheck(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.transition(ctx, userID, chatID, entity.StateAwaitingImages)
}

// StartProcessing отмечает, что по снимкам пользователя идёт анализ
func (s *UserService) StartProcessing(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.transition(ctx, userID, chatID, entity.StateProcessing)
}

func (s *UserService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.transition(ctx, userID, chatID, entity.StateMainMenu)
}

// FinishRun запоминает завершённый прогон
func (s *UserService) FinishRun(ctx context.Context, userID, chatID int64, runID string) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) error {
		u.FinishRun(runID, s.now())
		return nil
	})
}

// BeginCheckIfIdle начинает проверку, если пользователь в главном меню
func (s *UserService) BeginCheckIfIdle(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	return s.repo.Update(ctx, userID, chatID, func(u *entity.User) error {
		if u.State != entity.StateMainMenu {
			return nil
		}
		return u.Transition(entity.StateAwaitingImages, s.now())
	})
}

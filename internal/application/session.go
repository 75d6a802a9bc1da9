package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/port"
)

// ErrNoPendingImages у пользователя нет загруженных снимков
var ErrNoPendingImages = errors.New("no pending images")

// QAReport результат прогона с готовыми файлами отчётов.
type QAReport struct {
	Results *entity.ResultSet
	CSV     []byte
	PDF     []byte
}

// QAService копит снимки пользователя и запускает по ним проверку совпадения полей.
type QAService struct {
	users    *UserService
	queue    port.AcquisitionQueue
	loader   port.AcquisitionLoader
	pipeline *CoincidenceService
	table    port.ResultWriter
	report   port.ReportRenderer
}

// NewQAService создаёт сервис сессий проверки. table и report могут быть nil.
func NewQAService(users *UserService, queue port.AcquisitionQueue, loader port.AcquisitionLoader, pipeline *CoincidenceService, table port.ResultWriter, report port.ReportRenderer) *QAService {
	return &QAService{
		users:    users,
		queue:    queue,
		loader:   loader,
		pipeline: pipeline,
		table:    table,
		report:   report,
	}
}

// Begin начинает новую проверку и сбрасывает ранее загруженные снимки.
func (s *QAService) Begin(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	user, err := s.users.BeginCheck(ctx, userID, chatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.queue.Drain(ctx, userID); err != nil {
		return nil, err
	}
	return user, nil
}

// AddImage разбирает снимок и добавляет его в очередь пользователя.
// Возвращает снимок и количество снимков в очереди.
func (s *QAService) AddImage(ctx context.Context, userID, chatID int64, name string, data []byte) (*entity.Acquisition, int, error) {
	if s.loader == nil {
		return nil, 0, errors.New("acquisition loader is not configured")
	}

	acq, err := s.loader.Decode(name, data)
	if err != nil {
		return nil, 0, fmt.Errorf("decode %s: %w", name, err)
	}

	n, err := s.queue.Enqueue(ctx, userID, acq)
	if err != nil {
		return nil, 0, err
	}

	if _, err := s.users.BeginCheckIfIdle(ctx, userID, chatID); err != nil {
		return acq, n, err
	}
	return acq, n, nil
}

// Pending количество снимков в очереди пользователя.
func (s *QAService) Pending(ctx context.Context, userID int64) int {
	return s.queue.Len(ctx, userID)
}

// Run запускает анализ по всем снимкам пользователя и готовит отчёты.
func (s *QAService) Run(ctx context.Context, userID, chatID int64) (*QAReport, error) {
	if s.pipeline == nil {
		return nil, errors.New("coincidence pipeline is not configured")
	}

	if s.queue.Len(ctx, userID) == 0 {
		return nil, ErrNoPendingImages
	}

	// Состояние меняется до того, как очередь забрана: при отказе снимки остаются.
	if _, err := s.users.StartProcessing(ctx, userID, chatID); err != nil {
		return nil, err
	}

	runID := ""
	defer func() {
		if runID == "" {
			_, _ = s.users.Cancel(ctx, userID, chatID)
			return
		}
		_, _ = s.users.FinishRun(ctx, userID, chatID, runID)
	}()

	acquisitions, err := s.queue.Drain(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(acquisitions) == 0 {
		return nil, ErrNoPendingImages
	}

	rs, err := s.pipeline.Run(ctx, acquisitions)
	if err != nil {
		return nil, err
	}
	runID = rs.RunID

	out := &QAReport{Results: rs}
	if s.table != nil {
		var buf bytes.Buffer
		if err := s.table.Write(&buf, rs); err != nil {
			return nil, fmt.Errorf("write results table: %w", err)
		}
		out.CSV = buf.Bytes()
	}
	if s.report != nil {
		var buf bytes.Buffer
		if err := s.report.Render(&buf, rs, acquisitions); err != nil {
			return nil, fmt.Errorf("render report: %w", err)
		}
		out.PDF = buf.Bytes()
	}
	return out, nil
}

// Cancel сбрасывает очередь и возвращает пользователя в главное меню.
func (s *QAService) Cancel(ctx context.Context, userID, chatID int64) (*entity.User, error) {
	if _, err := s.queue.Drain(ctx, userID); err != nil {
		return nil, err
	}
	return s.users.Cancel(ctx, userID, chatID)
}

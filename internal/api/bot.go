package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "github.com/alex-hastava/FacePhantom-QA-Tool/internal/application"
	"github.com/alex-hastava/FacePhantom-QA-Tool/internal/domain/entity"
)

// maxDocumentSize предел скачивания файлов Bot API
const maxDocumentSize = 20 << 20

const (
	msgStart = `👋 Привет! Я бот для проверки совпадения светового и радиационного полей.

📎 Отправьте снимки фантома FacePhantom (RT Image, DICOM) документами, затем /run.

📋 Команды:
/check — начать новую проверку
/run — запустить анализ загруженных снимков
/help — справка
/cancel — отменить текущую проверку`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ /check — начать проверку
2️⃣ Отправьте один или несколько DICOM-снимков документами (не фото)
3️⃣ /run — бот найдёт маркеры, края поля и пришлёт вердикт, CSV и PDF

💡 Угол стола берётся из имени файла, например patient_45_couch_001.dcm или beam_90m_couch.dcm.

📋 Команды:
/check — начать проверку
/run — запустить анализ
/cancel — отменить проверку`

	msgAwaitingImages  = "📎 Отправьте DICOM-снимки документами, затем /run."
	msgCancelled       = "❌ Проверка отменена. Отправьте /check для новой проверки."
	msgSendDocument    = "📎 Пожалуйста, отправьте DICOM-снимок документом или используйте /help."
	msgPhotoNotAllowed = "🖼 Фото сжимается Telegram. Отправьте исходный DICOM-файл документом."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Анализирую снимки..."
	msgNoImages        = "📭 Нет загруженных снимков. Отправьте DICOM-файлы документами."
	msgTooLarge        = "⚠️ Файл слишком большой (максимум 20 МБ)."
	msgDecodeError     = "⚠️ Не удалось прочитать DICOM-файл %s."
	msgProcessingError = "⚠️ Не удалось выполнить анализ. Попробуйте ещё раз."
	msgBusy            = "⏳ Анализ уже выполняется, дождитесь результата."
	msgQueued          = "✅ %s добавлен (%s, угол стола %d°). Снимков в очереди: %d. /run — запустить анализ."
)

// Bot представляет Telegram-бота
type Bot struct {
	api *tgbotapi.BotAPI
	qa  *app.QAService
}

// NewBot создаёт нового бота
func NewBot(token string, qa *app.QAService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api: api,
		qa:  qa,
	}, nil
}

// Run запускает основной цикл обработки сообщений
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil {
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}

	if len(msg.Photo) > 0 {
		b.sendMessage(msg.Chat.ID, msgPhotoNotAllowed)
		return
	}

	b.sendMessage(msg.Chat.ID, msgSendDocument)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	switch msg.Command() {
	case "start":
		if _, err := b.qa.Cancel(ctx, userID, chatID); err != nil {
			log.Printf("Error resetting user %d: %v", userID, err)
		}
		b.sendMessage(chatID, msgStart)

	case "help":
		b.sendMessage(chatID, msgHelp)

	case "check":
		if _, err := b.qa.Begin(ctx, userID, chatID); err != nil {
			if errors.Is(err, entity.ErrInvalidTransition) {
				b.sendMessage(chatID, msgBusy)
				return
			}
			log.Printf("Error starting check for user %d: %v", userID, err)
			b.sendMessage(chatID, msgProcessingError)
			return
		}
		b.sendMessage(chatID, msgAwaitingImages)

	case "run":
		b.handleRun(ctx, userID, chatID)

	case "cancel":
		if _, err := b.qa.Cancel(ctx, userID, chatID); err != nil {
			log.Printf("Error cancelling check for user %d: %v", userID, err)
		}
		b.sendMessage(chatID, msgCancelled)

	default:
		b.sendMessage(chatID, msgUnknownCommand)
	}
}

// handleDocument скачивает DICOM-файл и ставит его в очередь пользователя
func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	doc := msg.Document
	if doc.FileSize > maxDocumentSize {
		b.sendMessage(msg.Chat.ID, msgTooLarge)
		return
	}

	data, err := b.downloadFile(doc.FileID)
	if err != nil {
		log.Printf("Error downloading document: %v", err)
		b.sendMessage(msg.Chat.ID, msgProcessingError)
		return
	}

	name := documentName(doc)
	acq, n, err := b.qa.AddImage(ctx, msg.From.ID, msg.Chat.ID, name, data)
	if err != nil {
		log.Printf("Error adding image %s for user %d: %v", name, msg.From.ID, err)
		b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgDecodeError, name))
		return
	}

	log.Printf("Queued %s for user %d (%d bytes, %d pending)", name, msg.From.ID, len(data), n)
	b.sendMessage(msg.Chat.ID, fmt.Sprintf(msgQueued, name, humanSize(len(data)), acq.Angle, n))
}

// handleRun запускает анализ и отправляет сводку, CSV и PDF
func (b *Bot) handleRun(ctx context.Context, userID, chatID int64) {
	if b.qa.Pending(ctx, userID) == 0 {
		b.sendMessage(chatID, msgNoImages)
		return
	}

	b.sendMessage(chatID, msgProcessing)

	rep, err := b.qa.Run(ctx, userID, chatID)
	if errors.Is(err, app.ErrNoPendingImages) {
		b.sendMessage(chatID, msgNoImages)
		return
	}
	if errors.Is(err, entity.ErrInvalidTransition) {
		b.sendMessage(chatID, msgBusy)
		return
	}
	if err != nil {
		log.Printf("Error running check for user %d: %v", userID, err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	b.sendMessage(chatID, SummaryText(rep.Results))
	if len(rep.CSV) > 0 {
		b.sendDocument(chatID, "coincidence_"+shortID(rep.Results.RunID)+".csv", rep.CSV)
	}
	if len(rep.PDF) > 0 {
		b.sendDocument(chatID, "coincidence_"+shortID(rep.Results.RunID)+".pdf", rep.PDF)
	}
}

// SummaryText краткий отчёт по прогону для сообщения в чат.
func SummaryText(rs *entity.ResultSet) string {
	var sb strings.Builder
	verdict := "✅ PASS"
	if rs.Failed() > 0 {
		verdict = "❌ FAIL"
	}
	fmt.Fprintf(&sb, "%s — прошло %d из %d (допуск: край %.1f мм, центр %.1f мм)\n",
		verdict, rs.Passed(), rs.Len(), rs.Tolerance.EdgeToleranceMM, rs.Tolerance.CenterToleranceMM)

	for _, o := range rs.Outcomes {
		sb.WriteString("\n")
		if o.Result == nil {
			kind, message := "", ""
			if o.Failure != nil {
				kind, message = string(o.Failure.Kind), o.Failure.Message
			}
			fmt.Fprintf(&sb, "⚠️ %s (%d°): %s — %s", o.Source, o.Angle, kind, message)
			continue
		}

		mark := "✅"
		if !o.Result.Pass {
			mark = "❌"
		}
		fmt.Fprintf(&sb, "%s %s (%d°):", mark, o.Source, o.Angle)
		for _, role := range entity.EdgeRoles {
			e := o.Result.Edge(role)
			fmt.Fprintf(&sb, " %s %+.2f", strings.ToLower(role.String()), e.Offset)
		}
		fmt.Fprintf(&sb, " центр %.2f мм", o.Result.CenterOffset)
	}
	return sb.String()
}

func documentName(doc *tgbotapi.Document) string {
	if doc.FileName != "" {
		return filepath.Base(doc.FileName)
	}
	return doc.FileUniqueID + ".dcm"
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func humanSize(n int) string {
	if n >= 1<<20 {
		return fmt.Sprintf("%.1f МБ", float64(n)/(1<<20))
	}
	return fmt.Sprintf("%d КБ", n>>10)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	fileURL := file.Link(b.api.Token)

	resp, err := http.Get(fileURL)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

// sendDocument отправляет файл отчёта
func (b *Bot) sendDocument(chatID int64, name string, data []byte) {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	if _, err := b.api.Send(doc); err != nil {
		log.Printf("Error sending document %s: %v", name, err)
	}
}

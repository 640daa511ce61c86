package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "sheet-scanner/internal/application"
	"sheet-scanner/internal/container"
	"sheet-scanner/internal/domain/entity"
)

const (
	msgStart = `👋 Привет! Я бот для проверки бланков ответов.

📸 Отправьте мне фото заполненного бланка, и я распознаю отмеченные ответы.

📋 Команды:
/scan — распознать бланк
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте фото бланка целиком
2️⃣ Бот выровняет лист и найдёт кружки
3️⃣ Вы получите ответы по вопросам и фото с отмеченными вариантами

💡 Рекомендации:
• Снимайте при хорошем освещении
• Лист должен попасть в кадр всеми четырьмя углами
• Закрашивайте кружки плотно

❔ означает, что ответ в строке не распознан.

📋 Команды:
/scan — распознать бланк
/cancel — отменить операцию`

	msgAwaitingSheet   = "📸 Отправьте фото бланка для распознавания."
	msgCancelled       = "❌ Операция отменена. Отправьте /scan для нового бланка."
	msgSendPhoto       = "📸 Пожалуйста, отправьте фото бланка."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Распознаю бланк..."
	msgNoBubbles       = "🔍 На фото не найдено ни одного кружка. Попробуйте сфотографировать бланк ближе."
	msgProcessingError = "⚠️ Не удалось обработать изображение. Попробуйте сделать другое фото."
)

// Bot представляет Telegram-бота
type Bot struct {
	api    *tgbotapi.BotAPI
	users  *app.UserService
	sheets *app.SheetService
	client *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, c *container.Container) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	log.Printf("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:    api,
		users:  c.UserService,
		sheets: c.SheetService,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Run запускает основной цикл обработки сообщений до отмены контекста
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

	if _, err := b.users.Get(ctx, msg.From.ID, msg.Chat.ID); err != nil {
		log.Printf("Error getting user: %v", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	// Фото или картинка, отправленная файлом
	if fileID, ok := imageFileID(msg); ok {
		b.handleSheet(ctx, msg, fileID)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	var err error
	switch msg.Command() {
	case "start":
		_, err = b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgStart)

	case "help":
		b.sendMessage(msg.Chat.ID, msgHelp)

	case "scan":
		_, err = b.users.BeginScan(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgAwaitingSheet)

	case "cancel":
		_, err = b.users.Cancel(ctx, msg.From.ID, msg.Chat.ID)
		b.sendMessage(msg.Chat.ID, msgCancelled)

	default:
		b.sendMessage(msg.Chat.ID, msgUnknownCommand)
	}
	if err != nil {
		log.Printf("Error updating user state: %v", err)
	}
}

// handleSheet скачивает фото бланка, распознаёт его и отправляет результат
func (b *Bot) handleSheet(ctx context.Context, msg *tgbotapi.Message, fileID string) {
	userID, chatID := msg.From.ID, msg.Chat.ID

	if _, err := b.users.SetState(ctx, userID, chatID, entity.StateProcessing); err != nil {
		log.Printf("Error updating user state: %v", err)
	}
	b.sendMessage(chatID, msgProcessing)

	out, err := b.scan(ctx, fileID)
	if err != nil {
		log.Printf("Error scanning sheet from chat %d: %v", chatID, err)
		if errors.Is(err, entity.ErrNoBubbles) {
			b.sendMessage(chatID, msgNoBubbles)
		} else {
			b.sendMessage(chatID, msgProcessingError)
		}
		if _, err := b.users.Cancel(ctx, userID, chatID); err != nil {
			log.Printf("Error updating user state: %v", err)
		}
		return
	}

	b.sendMessage(chatID, formatAnswers(out.Result))

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "marked.jpg", Bytes: out.Marked})
	photo.Caption = fmt.Sprintf("Распознано %d из %d", out.Result.ResolvedCount(), len(out.Result.Answers))
	if _, err := b.api.Send(photo); err != nil {
		log.Printf("Error sending photo: %v", err)
	}

	user, err := b.users.FinishScan(ctx, userID, chatID, time.Now())
	if err != nil {
		log.Printf("Error updating user state: %v", err)
		return
	}
	log.Printf("Chat %d: sheet scanned, %d/%d answers, total scans %d",
		chatID, out.Result.ResolvedCount(), len(out.Result.Answers), user.Scans)
}

func (b *Bot) scan(ctx context.Context, fileID string) (*app.SheetOutput, error) {
	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	return b.sheets.Process(ctx, imageData)
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
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

// imageFileID возвращает идентификатор фото с максимальным разрешением
// или документа с картинкой.
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if len(msg.Photo) > 0 {
		return msg.Photo[len(msg.Photo)-1].FileID, true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, true
	}
	return "", false
}

// formatAnswers собирает текст ответа по вопросам
func formatAnswers(res *entity.SheetResult) string {
	if len(res.Answers) == 0 {
		return "Ответы не найдены."
	}

	var sb strings.Builder
	sb.WriteString("📝 Ответы:\n")
	for _, a := range res.Answers {
		choice := a.Choice
		if !a.Resolved {
			choice = "❔"
		}
		fmt.Fprintf(&sb, "%d. %s\n", a.Question, choice)
	}
	fmt.Fprintf(&sb, "\nРаспознано: %d из %d", res.ResolvedCount(), len(res.Answers))
	if res.Rotated {
		fmt.Fprintf(&sb, "\nНаклон исправлен на %.1f°", res.SkewAngle)
	}
	if !res.Rectified {
		sb.WriteString("\n⚠️ Границы листа не найдены, перспектива не исправлена")
	}
	return sb.String()
}

package entity

import "time"

// UserState состояние пользователя в диалоге
type UserState string

const (
	StateMainMenu      UserState = "main_menu"      // В главном меню
	StateAwaitingSheet UserState = "awaiting_sheet" // Ожидание фото бланка
	StateProcessing    UserState = "processing"     // Распознавание бланка
)

// User представляет пользователя бота
type User struct {
	ID         int64     // Telegram User ID
	ChatID     int64     // Telegram Chat ID
	State      UserState // Текущее состояние пользователя
	Scans      int       // Сколько бланков распознано
	LastScanAt time.Time // Время последнего распознавания
}

// NewUser создаёт нового пользователя с начальным состоянием
func NewUser(userID, chatID int64) *User {
	return &User{
		ID:     userID,
		ChatID: chatID,
		State:  StateMainMenu,
	}
}

// SetState обновляет состояние пользователя
func (u *User) SetState(state UserState) {
	u.State = state
}

// RecordScan отмечает успешно распознанный бланк
func (u *User) RecordScan(at time.Time) {
	u.Scans++
	u.LastScanAt = at
}

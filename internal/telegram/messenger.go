// Package telegram содержит слой работы с поверхностью сообщений.
// messenger.go определяет интерфейс Messenger — всё, что ядру бота
// нужно от платформы: отправить, отредактировать, удалить сообщение
// и просмотреть ограниченное окно своих недавних сообщений.
package telegram

import (
	"context"
	"time"
)

// Виды сообщений-артефактов, которые бот публикует и потом ищет в истории.
const (
	KindLeaderboard = "leaderboard" // рейтинг дня (редактируется на месте)
	KindEntryPoint  = "entrypoint"  // форма регистрации с кнопкой
	KindAudit       = "audit"       // запись о заявке в лог-чате
	KindSummary     = "summary"     // итоги дня в лог-чате
	KindPrompt      = "prompt"      // временный вопрос «сколько шалкеров?»
)

// Button — inline-кнопка под сообщением.
type Button struct {
	Label string // текст на кнопке
	Data  string // callback data
}

// Message — форматированное сообщение: заголовок, тело, подпись.
type Message struct {
	Title  string
	Body   string
	Footer string
	Button *Button // nil, если кнопка не нужна
}

// Posted — след отправленного ботом сообщения в журнале.
type Posted struct {
	MessageID int
	Kind      string
	PostedAt  time.Time
}

// Messenger — возможности платформы, которые потребляет ядро.
//
// History возвращает ограниченное окно НАШИХ недавних сообщений в чате,
// от новых к старым. Bot API Telegram не умеет читать историю чата,
// поэтому окно строится по журналу собственных отправок (см. Journal).
// Сообщение глубже окна бот не найдёт — это принятый компромисс.
type Messenger interface {
	Send(ctx context.Context, chatID int64, kind string, msg Message) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, msg Message) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	History(ctx context.Context, chatID int64, limit int) ([]Posted, error)
}

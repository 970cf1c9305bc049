// Package telegram — journal.go ведёт журнал отправленных ботом сообщений.
// По журналу строится ограниченное окно истории для поиска своих артефактов
// (рейтинг, форма) — Bot API не даёт читать историю чата напрямую.
package telegram

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Journal работает с таблицей bot_messages.
type Journal struct {
	db *pgxpool.Pool
}

// NewJournal создаёт журнал сообщений.
func NewJournal(db *pgxpool.Pool) *Journal {
	return &Journal{db: db}
}

// Record запоминает отправленное сообщение.
func (j *Journal) Record(ctx context.Context, chatID int64, messageID int, kind string) error {
	query := `INSERT INTO bot_messages (chat_id, message_id, kind) VALUES ($1, $2, $3)`
	_, err := j.db.Exec(ctx, query, chatID, messageID, kind)
	if err != nil {
		return fmt.Errorf("ошибка записи в журнал: %w", err)
	}
	return nil
}

// Forget удаляет след сообщения (само сообщение удалено с поверхности).
func (j *Journal) Forget(ctx context.Context, chatID int64, messageID int) error {
	query := `DELETE FROM bot_messages WHERE chat_id = $1 AND message_id = $2`
	_, err := j.db.Exec(ctx, query, chatID, messageID)
	if err != nil {
		return fmt.Errorf("ошибка удаления из журнала: %w", err)
	}
	return nil
}

// Recent возвращает последние limit сообщений бота в чате, от новых к старым.
func (j *Journal) Recent(ctx context.Context, chatID int64, limit int) ([]Posted, error) {
	query := `
		SELECT message_id, kind, posted_at
		FROM bot_messages
		WHERE chat_id = $1
		ORDER BY posted_at DESC, message_id DESC
		LIMIT $2
	`
	rows, err := j.db.Query(ctx, query, chatID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения журнала: %w", err)
	}
	defer rows.Close()

	var posted []Posted
	for rows.Next() {
		var p Posted
		if err := rows.Scan(&p.MessageID, &p.Kind, &p.PostedAt); err != nil {
			return nil, fmt.Errorf("ошибка сканирования журнала: %w", err)
		}
		posted = append(posted, p)
	}
	// Оборвавшаяся выборка молча сузила бы окно сканирования
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк журнала: %w", err)
	}
	return posted, nil
}

// Prune удаляет записи журнала старше retentionDays дней.
// Вызывается кроном, чтобы журнал не рос бесконечно.
func (j *Journal) Prune(ctx context.Context, retentionDays int) (int64, error) {
	query := `DELETE FROM bot_messages WHERE posted_at < NOW() - make_interval(days => $1)`
	tag, err := j.db.Exec(ctx, query, retentionDays)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки журнала: %w", err)
	}
	return tag.RowsAffected(), nil
}

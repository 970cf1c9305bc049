// Package bot — pending.go отслеживает выданные вопросы формы.
// Нажав кнопку, пользователь получает вопрос «сколько шалкеров?»;
// его ответ (reply) должен совпасть с вопросом и автором.
package bot

import (
	"sync"
	"time"
)

// promptTTL — сколько живёт невостребованный вопрос.
const promptTTL = 10 * time.Minute

type pendingEntry struct {
	userID   int64
	issuedAt time.Time
}

// pendingPrompts — карта «ID вопроса → кому выдан».
type pendingPrompts struct {
	mu       sync.Mutex
	byPrompt map[int]pendingEntry
}

func newPendingPrompts() *pendingPrompts {
	return &pendingPrompts{byPrompt: make(map[int]pendingEntry)}
}

// Add регистрирует выданный вопрос.
func (p *pendingPrompts) Add(promptID int, userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	// Лениво выметаем протухшие записи, чтобы карта не росла
	cutoff := time.Now().Add(-promptTTL)
	for id, e := range p.byPrompt {
		if e.issuedAt.Before(cutoff) {
			delete(p.byPrompt, id)
		}
	}

	p.byPrompt[promptID] = pendingEntry{userID: userID, issuedAt: time.Now()}
}

// Claim забирает вопрос, если он выдан именно этому пользователю.
// Повторный ответ на тот же вопрос уже не сработает.
func (p *pendingPrompts) Claim(promptID int, userID int64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, ok := p.byPrompt[promptID]
	if !ok || e.userID != userID || time.Since(e.issuedAt) > promptTTL {
		return false
	}
	delete(p.byPrompt, promptID)
	return true
}

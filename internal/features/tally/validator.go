// Package tally — validator.go проверяет текст заявки.
package tally

import (
	"strconv"
	"strings"

	"shulkerlog.ru/telegram-bot/internal/common"
)

// maxAmountDigits ограничивает длину числа в заявке.
// 4 цифры ⇒ максимум 9999 — защита от патологического ввода.
const maxAmountDigits = 4

// ParseAmount разбирает текст заявки в положительное число шалкеров.
// Чистая функция без побочных эффектов.
//
// Отклоняются одной и той же ошибкой common.ErrInvalidAmount:
// не число, ноль, отрицательное, длиннее 4 цифр.
func ParseAmount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" || len(s) > maxAmountDigits {
		return 0, common.ErrInvalidAmount
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, common.ErrInvalidAmount
	}
	return n, nil
}

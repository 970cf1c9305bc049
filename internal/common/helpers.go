// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование дат, работа с временем.
package common

import (
	"math"
	"time"
)

// DayFormat — формат календарного дня в базе и в подписях.
// Текстовый ISO-формат сортируется лексикографически как даты.
const DayFormat = "2006-01-02"

// PluralizeShulkers возвращает правильную форму слова «шалкер» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "шалкер" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "шалкера" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "шалкеров" (0, 5-20, 25-30, 100, ...)
//
// Примеры:
//
//	PluralizeShulkers(1)  → "шалкер"
//	PluralizeShulkers(3)  → "шалкера"
//	PluralizeShulkers(5)  → "шалкеров"
//	PluralizeShulkers(11) → "шалкеров"
//	PluralizeShulkers(21) → "шалкер"
func PluralizeShulkers(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return "шалкер"
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "шалкера"
	}

	// Большое множественное: 0, 5-20, 25-30, 100, ...
	return "шалкеров"
}

// LoadLocation загружает часовой пояс по имени.
// Если загрузить не удалось — используем UTC+3 вручную.
func LoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		loc = time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

// Today возвращает текущий календарный день в заданном часовом поясе,
// в формате DayFormat. Все записи и рейтинг привязаны к этому дню.
func Today(loc *time.Location) string {
	return time.Now().In(loc).Format(DayFormat)
}

// FormatDay форматирует день для подписи в сообщениях: "31.08.2026".
func FormatDay(day string) string {
	t, err := time.Parse(DayFormat, day)
	if err != nil {
		return day
	}
	return t.Format("02.01.2006")
}

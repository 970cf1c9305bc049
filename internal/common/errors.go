// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import "errors"

// Ошибки валидации заявок
var (
	// ErrInvalidAmount — текст заявки не является целым числом от 1 до 9999.
	// Одна ошибка на все случаи: не число, ноль, отрицательное, слишком длинное.
	ErrInvalidAmount = errors.New("нужно целое число от 1 до 9999")
)

// Ошибки хранилища
var (
	// ErrStoreUnavailable — база данных недоступна или запрос упал.
	// Нельзя путать с «записи нет»: при этой ошибке заявка НЕ принята.
	ErrStoreUnavailable = errors.New("хранилище недоступно")
)

// Ошибки платформы
var (
	// ErrTargetUnresolved — настроенный чат не найден или бот из него удалён
	ErrTargetUnresolved = errors.New("чат не найден или недоступен")
	// ErrMessageGone — сообщение, которое бот пытался изменить или удалить,
	// уже снесено с поверхности (например, руками администратора)
	ErrMessageGone = errors.New("сообщение уже удалено")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

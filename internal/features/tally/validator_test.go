package tally_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shulkerlog.ru/telegram-bot/internal/common"
	"shulkerlog.ru/telegram-bot/internal/features/tally"
)

func TestParseAmount_Accepts(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"1", 1},
		{"3", 3},
		{"42", 42},
		{"999", 999},
		{"9999", 9999},
		{" 7 ", 7}, // пробелы по краям не мешают
	}

	for _, tc := range cases {
		got, err := tally.ParseAmount(tc.raw)
		require.NoError(t, err, "raw=%q", tc.raw)
		assert.Equal(t, tc.want, got, "raw=%q", tc.raw)
	}
}

func TestParseAmount_Rejects(t *testing.T) {
	cases := []string{
		"0",
		"-3",
		"abc",
		"",
		"   ",
		"3.5",
		"10000", // больше 4 цифр
		"99999",
		"1e3",
	}

	for _, raw := range cases {
		_, err := tally.ParseAmount(raw)
		require.Error(t, err, "raw=%q", raw)
		// Одна и та же ошибка на все случаи — без спецсообщений
		assert.ErrorIs(t, err, common.ErrInvalidAmount, "raw=%q", raw)
	}
}

package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFlexibleDate(t *testing.T) {
	expected := NewDate(2024, 1, 15)

	for _, input := range []string{"2024-01-15", "2024/01/15", "20240115", " 2024-01-15 "} {
		t.Run(input, func(t *testing.T) {
			parsed, err := ParseFlexibleDate(input)
			require.NoError(t, err)
			require.Equal(t, expected, parsed)
		})
	}

	t.Run("garbage", func(t *testing.T) {
		_, err := ParseFlexibleDate("15th of January")
		require.Error(t, err)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseFlexibleDate("")
		require.Error(t, err)
	})
}

func TestROCDate(t *testing.T) {
	require.Equal(t, "113/01/15", ROCDate(NewDate(2024, 1, 15)))
	require.Equal(t, "99/12/31", ROCDate(NewDate(2010, 12, 31)))
}

func TestTruncateToDay(t *testing.T) {
	truncated := TruncateToDay(time.Date(2024, 1, 15, 13, 45, 30, 999, time.UTC))
	require.Equal(t, NewDate(2024, 1, 15), truncated)
}

func TestSameDay(t *testing.T) {
	require.True(t, SameDay(
		time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 15, 23, 0, 0, 0, time.UTC),
	))
	require.False(t, SameDay(NewDate(2024, 1, 15), NewDate(2024, 1, 16)))
}

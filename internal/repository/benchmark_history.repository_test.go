package repository

import (
	"beat0050/internal/util"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestBenchmarkHistoryRepository_GetClose(t *testing.T) {
	t.Run("reads closes from the dataset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"2024-01-15": 132.6}`), 0644))

		repo := NewBenchmarkHistoryRepository(path)

		price, err := repo.GetClose(util.NewDate(2024, 1, 15))
		require.NoError(t, err)
		require.NotNil(t, price)
		require.True(t, decimal.NewFromFloat(132.6).Equal(*price))

		missing, err := repo.GetClose(util.NewDate(2024, 1, 16))
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("missing file errors on every lookup", func(t *testing.T) {
		repo := NewBenchmarkHistoryRepository(filepath.Join(t.TempDir(), "nope.json"))

		_, err := repo.GetClose(util.NewDate(2024, 1, 15))
		require.Error(t, err)

		_, err = repo.GetClose(util.NewDate(2024, 1, 16))
		require.Error(t, err)
	})

	t.Run("malformed dataset", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "history.json")
		require.NoError(t, os.WriteFile(path, []byte(`not json`), 0644))

		repo := NewBenchmarkHistoryRepository(path)

		_, err := repo.GetClose(util.NewDate(2024, 1, 15))
		require.Error(t, err)
	})
}

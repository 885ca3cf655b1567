package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-credit-score/internal/domain"
)

func TestMinMax(t *testing.T) {
	tests := []struct {
		name       string
		in         []float64
		want       []float64
		degenerate bool
	}{
		{"empty", nil, []float64{}, false},
		{"single value", []float64{5}, []float64{0}, true},
		{"all equal", []float64{3, 3, 3}, []float64{0, 0, 0}, true},
		{"spread", []float64{1, 2, 3}, []float64{0, 0.5, 1}, false},
		{"negative", []float64{-2, 0, 2}, []float64{0, 0.5, 1}, false},
		{"non-finite left out", []float64{1, math.Inf(1), 3, math.NaN(), math.Inf(-1)}, []float64{0, 0, 1, 0, 0}, false},
		{"only non-finite", []float64{math.NaN(), math.Inf(1)}, []float64{0, 0}, true},
		{"width overflows", []float64{-math.MaxFloat64, 0, math.MaxFloat64}, []float64{0, 0.5, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, degenerate := MinMax(tt.in)
			assert.Equal(t, tt.degenerate, degenerate)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestScalePopulation_Bounds(t *testing.T) {
	rows := []*domain.WalletFeatures{
		{Wallet: "a", TransactionCount: 10, TotalVolumeUSD: 1e9, LiquidationCount: 0, RepayCount: 5, WalletAgeDays: 400},
		{Wallet: "b", TransactionCount: 1, TotalVolumeUSD: 0.01, LiquidationCount: 3, RepayCount: 0, WalletAgeDays: 0},
		{Wallet: "c", TransactionCount: 4, TotalVolumeUSD: 12, LiquidationCount: 1, RepayCount: 2, WalletAgeDays: 30},
	}

	scaled, warnings := ScalePopulation(rows)
	require.Len(t, scaled, 3)
	assert.Empty(t, warnings)

	for i, s := range scaled {
		assert.Equal(t, rows[i].Wallet, s.Wallet)
		for _, v := range []float64{s.TransactionCount, s.TotalVolumeUSD, s.LiquidationCount, s.RepayCount, s.WalletAgeDays} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}

	assert.Equal(t, 1.0, scaled[0].TransactionCount)
	assert.Equal(t, 0.0, scaled[1].TransactionCount)
	assert.Equal(t, 1.0, scaled[1].LiquidationCount)
}

func TestScalePopulation_ZeroWidth(t *testing.T) {
	rows := []*domain.WalletFeatures{
		{Wallet: "a", TransactionCount: 2, TotalVolumeUSD: 10, WalletAgeDays: 7},
		{Wallet: "b", TransactionCount: 5, TotalVolumeUSD: 10, WalletAgeDays: 7},
	}

	scaled, warnings := ScalePopulation(rows)

	for _, s := range scaled {
		assert.Equal(t, 0.0, s.TotalVolumeUSD)
		assert.Equal(t, 0.0, s.LiquidationCount)
		assert.Equal(t, 0.0, s.RepayCount)
		assert.Equal(t, 0.0, s.WalletAgeDays)
	}

	cols := make([]string, 0, len(warnings))
	for _, w := range warnings {
		assert.Equal(t, StageScaler, w.Stage)
		cols = append(cols, w.Column)
	}
	assert.ElementsMatch(t, []string{
		ColumnTotalVolumeUSD, ColumnLiquidationCount, ColumnRepayCount, ColumnWalletAgeDays,
	}, cols)
}

func TestScalePopulation_SingleWallet(t *testing.T) {
	scaled, warnings := ScalePopulation([]*domain.WalletFeatures{
		{Wallet: "solo", TransactionCount: 9, TotalVolumeUSD: 100, RepayCount: 3, WalletAgeDays: 12},
	})

	require.Len(t, scaled, 1)
	assert.Equal(t, domain.ScaledFeatures{Wallet: "solo"}, *scaled[0])
	assert.Len(t, warnings, len(ScaledColumns))
}

package reporting

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"image/png"
	"strconv"
	"strings"
	"testing"
	"time"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/storage"
	"wallet-credit-score/internal/storage/memory"
)

func setupTestData(t *testing.T) (*memory.ScoreStore, *memory.FeatureStore) {
	ctx := context.Background()

	scoreStore := memory.NewScoreStore()
	featureStore := memory.NewFeatureStore()

	asOf := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	run := &domain.ScoreRun{
		RunID:         "run-1",
		AsOf:          asOf,
		InputDigest:   "deadbeef",
		EventsRead:    12,
		EventsSkipped: 1,
		WalletCount:   3,
		CreatedAt:     asOf,
	}
	scores := []*domain.WalletScoreRecord{
		{RunID: "run-1", Wallet: "0xc", CreditScore: 0, RawScore: -0.4},
		{RunID: "run-1", Wallet: "0xa", CreditScore: 1000, RawScore: 2.8},
		{RunID: "run-1", Wallet: "0xb", CreditScore: 450, RawScore: 1.1},
	}
	if err := scoreStore.InsertRun(ctx, run, scores); err != nil {
		t.Fatalf("InsertRun failed: %v", err)
	}

	features := []*domain.WalletFeatureRecord{
		{RunID: "run-1", Wallet: "0xa", TransactionCount: 15, TotalVolumeUSD: 1000, RepayCount: 5, DepositCount: 10, WalletAgeDays: 120, FirstSeenUnix: 1700000000, RawScore: 2.8, CreditScore: 1000},
		{RunID: "run-1", Wallet: "0xb", TransactionCount: 4, TotalVolumeUSD: 10.5, CreditScore: 450, RawScore: 1.1},
		{RunID: "run-1", Wallet: "0xc", TransactionCount: 9, LiquidationCount: 3, CreditScore: 0, RawScore: -0.4},
	}
	if err := featureStore.InsertBulk(ctx, features); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	return scoreStore, featureStore
}

func TestHistogram(t *testing.T) {
	bins := Histogram([]int{0, 99, 100, 450, 899, 900, 999, 1000, -1, 1001})

	if len(bins) != 10 {
		t.Fatalf("Expected 10 bins, got %d", len(bins))
	}

	want := []int{2, 1, 0, 0, 1, 0, 0, 0, 1, 3}
	for i, b := range bins {
		if b.Count != want[i] {
			t.Errorf("bin [%d,%d): expected %d, got %d", b.Lower, b.Upper, want[i], b.Count)
		}
	}
	if bins[9].Lower != 900 || bins[9].Upper != 1000 {
		t.Errorf("unexpected last bin %+v", bins[9])
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize([]int{1000, 0, 450, 550})
	if s.Wallets != 4 || s.Min != 0 || s.Max != 1000 {
		t.Errorf("unexpected summary %+v", s)
	}
	if s.Mean != 500 || s.Median != 500 {
		t.Errorf("Expected mean 500 and median 500, got %v and %v", s.Mean, s.Median)
	}

	if empty := Summarize(nil); empty.Wallets != 0 {
		t.Errorf("Expected empty summary, got %+v", empty)
	}
}

func TestGenerator_Generate(t *testing.T) {
	scoreStore, featureStore := setupTestData(t)
	fixed := time.Date(2025, 1, 11, 9, 30, 0, 0, time.UTC)

	gen := NewGenerator(scoreStore, featureStore).WithClock(func() time.Time { return fixed })

	report, err := gen.Generate(context.Background(), "")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixed) {
		t.Errorf("Expected GeneratedAt %v, got %v", fixed, report.GeneratedAt)
	}
	if report.Run.RunID != "run-1" {
		t.Errorf("Expected latest run run-1, got %s", report.Run.RunID)
	}
	if len(report.Scores) != 3 || len(report.Features) != 3 {
		t.Fatalf("Expected 3 scores and features, got %d and %d", len(report.Scores), len(report.Features))
	}
	if report.TopWallets[0].Wallet != "0xa" || report.BottomWallets[0].Wallet != "0xc" {
		t.Errorf("unexpected leaderboards: top %s, bottom %s", report.TopWallets[0].Wallet, report.BottomWallets[0].Wallet)
	}
	if report.Summary.Median != 450 {
		t.Errorf("Expected median 450, got %v", report.Summary.Median)
	}
}

func TestGenerator_NotFound(t *testing.T) {
	gen := NewGenerator(memory.NewScoreStore(), nil)

	_, err := gen.Generate(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRenderScoresCSV(t *testing.T) {
	scoreStore, _ := setupTestData(t)
	scores, _ := scoreStore.GetScoresByRun(context.Background(), "run-1")

	out := RenderScoresCSV(scores)
	want := "userWallet,credit_score\n0xa,1000\n0xb,450\n0xc,0\n"
	if out != want {
		t.Errorf("unexpected CSV:\n%s", out)
	}
}

func TestRenderScoresCSV_QuotesWallets(t *testing.T) {
	scores := []*domain.WalletScoreRecord{
		{Wallet: "a,b", CreditScore: 1},
		{Wallet: `say "hi"`, CreditScore: 2},
		{Wallet: "plain", CreditScore: 3},
	}

	out := RenderScoresCSV(scores)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("output does not parse as CSV: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d", len(records))
	}
	for i, s := range scores {
		if records[i+1][0] != s.Wallet || records[i+1][1] != strconv.Itoa(s.CreditScore) {
			t.Errorf("row %d: got %q, want %s,%d", i, records[i+1], s.Wallet, s.CreditScore)
		}
	}
}

func TestRenderFeaturesCSV(t *testing.T) {
	_, featureStore := setupTestData(t)
	rows, _ := featureStore.GetByRun(context.Background(), "run-1")

	out := RenderFeaturesCSV(rows)
	lines := strings.Split(strings.TrimSpace(out), "\n")

	if len(lines) != 4 {
		t.Fatalf("Expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "userWallet,transaction_count,total_volume_usd,") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if lines[1] != "0xa,15,1000.000000,0,5,0,10,120,2023-11-14T22:13:20Z,2.800000,1000" {
		t.Errorf("unexpected row %q", lines[1])
	}
}

func TestRenderMarkdown(t *testing.T) {
	scoreStore, featureStore := setupTestData(t)
	gen := NewGenerator(scoreStore, featureStore).WithClock(func() time.Time {
		return time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC)
	})

	report, err := gen.Generate(context.Background(), "run-1")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	report.DataQuality = DataQualitySection{
		SufficiencyChecks: []SufficiencyCheckRow{
			{Name: "Wallets scored", Threshold: ">= 2", Actual: "3", Pass: true},
		},
		AllChecksPassed: true,
		SkippedByField:  map[string]int{"timestamp": 1},
		Warnings:        []string{"scaler: zero-width range in repayCount, filled with 0"},
	}

	md := RenderMarkdown(report)

	for _, want := range []string{
		"# Wallet Credit Score Report",
		"Generated: 2025-01-11T00:00:00Z",
		"| Run ID | `run-1` |",
		"| Events Skipped | 1 |",
		"| [0, 100) | 1 | 33.3% |",
		"| [900, 1000] | 1 | 33.3% |",
		"| timestamp | 1 |",
		"| Wallets scored | >= 2 | 3 | PASS |",
		"**All checks passed.**",
		"- scaler: zero-width range in repayCount",
		"| 0xa | 1000 | 2.8000 |",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestRenderHistogramPNG(t *testing.T) {
	var buf bytes.Buffer
	bins := Histogram([]int{0, 10, 150, 999, 1000})

	if err := RenderHistogramPNG(&buf, bins); err != nil {
		t.Fatalf("RenderHistogramPNG failed: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if img.Bounds().Dx() != chartWidth || img.Bounds().Dy() != chartHeight {
		t.Errorf("unexpected size %v", img.Bounds())
	}
}

func TestNiceCeil(t *testing.T) {
	tests := map[int]int{0: 5, 5: 5, 6: 10, 11: 20, 51: 100, 1000: 1000, 1001: 2000}
	for in, want := range tests {
		if got := niceCeil(in); got != want {
			t.Errorf("niceCeil(%d) = %d, want %d", in, got, want)
		}
	}
}

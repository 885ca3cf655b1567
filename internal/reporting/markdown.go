package reporting

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"wallet-credit-score/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Wallet Credit Score Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))

	// Run Summary
	sb.WriteString("## Run Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Run ID | `%s` |\n", r.Run.RunID))
	sb.WriteString(fmt.Sprintf("| As Of | %s |\n", r.Run.AsOf.UTC().Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("| Input Digest | `%s` |\n", r.Run.InputDigest))
	sb.WriteString(fmt.Sprintf("| Events Read | %d |\n", r.Run.EventsRead))
	sb.WriteString(fmt.Sprintf("| Events Skipped | %d |\n", r.Run.EventsSkipped))
	sb.WriteString(fmt.Sprintf("| Wallets Scored | %d |\n", r.Run.WalletCount))
	sb.WriteString("\n")

	// Score Statistics
	sb.WriteString("## Score Statistics\n\n")
	if r.Summary.Wallets > 0 {
		sb.WriteString("| Min | Max | Mean | Median |\n")
		sb.WriteString("|-----|-----|------|--------|\n")
		sb.WriteString(fmt.Sprintf("| %d | %d | %.2f | %.1f |\n",
			r.Summary.Min, r.Summary.Max, r.Summary.Mean, r.Summary.Median))
	} else {
		sb.WriteString("No scores available.\n")
	}
	sb.WriteString("\n")

	// Distribution
	sb.WriteString("## Score Distribution\n\n")
	sb.WriteString("| Range | Wallets | Share |\n")
	sb.WriteString("|-------|---------|-------|\n")
	for i, b := range r.Histogram {
		closer := ")"
		if i == len(r.Histogram)-1 {
			closer = "]"
		}
		share := 0.0
		if r.Summary.Wallets > 0 {
			share = float64(b.Count) / float64(r.Summary.Wallets) * 100
		}
		sb.WriteString(fmt.Sprintf("| [%d, %d%s | %d | %.1f%% |\n", b.Lower, b.Upper, closer, b.Count, share))
	}
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.SufficiencyChecks) > 0 {
		sb.WriteString("### Sufficiency Checks\n\n")
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.SufficiencyChecks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Treat scores from this run with caution.\n\n")
		}
	}
	if len(r.DataQuality.SkippedByField) == 0 && len(r.DataQuality.Warnings) == 0 {
		sb.WriteString("No malformed events or degenerate ranges.\n\n")
	}
	if len(r.DataQuality.SkippedByField) > 0 {
		sb.WriteString("### Skipped Events\n\n")
		sb.WriteString("| Field | Events |\n")
		sb.WriteString("|-------|--------|\n")
		fields := make([]string, 0, len(r.DataQuality.SkippedByField))
		for f := range r.DataQuality.SkippedByField {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", f, r.DataQuality.SkippedByField[f]))
		}
		sb.WriteString("\n")
	}
	if len(r.DataQuality.Warnings) > 0 {
		sb.WriteString("### Warnings\n\n")
		for _, w := range r.DataQuality.Warnings {
			sb.WriteString(fmt.Sprintf("- %s\n", w))
		}
		sb.WriteString("\n")
	}

	// Leaderboards
	sb.WriteString("## Top Wallets\n\n")
	renderWalletTable(&sb, r.TopWallets)
	sb.WriteString("## Bottom Wallets\n\n")
	renderWalletTable(&sb, r.BottomWallets)

	return sb.String()
}

func renderWalletTable(sb *strings.Builder, rows []*domain.WalletScoreRecord) {
	if len(rows) == 0 {
		sb.WriteString("No wallets available.\n\n")
		return
	}
	sb.WriteString("| Wallet | Credit Score | Raw Score |\n")
	sb.WriteString("|--------|--------------|-----------|\n")
	for _, w := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.4f |\n", w.Wallet, w.CreditScore, w.RawScore))
	}
	sb.WriteString("\n")
}

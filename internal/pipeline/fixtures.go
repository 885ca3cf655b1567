package pipeline

import (
	"encoding/json"
	"strconv"

	"wallet-credit-score/internal/domain"
	"wallet-credit-score/internal/ingestion"
)

// Fixture wallets.
const (
	FixtureWalletResponsible = "0x00000000001271821b6b8a0d2b1b2f5c1d6e4f7a"
	FixtureWalletRisky       = "0x000000000051d07a4fb3bd10121a343d85818da6"
	FixtureWalletCasual      = "0x000000000096026fb41fc39f9875d164bd82e2dc"
)

const fixtureDay = 86400

// fixtureStart is 2021-08-17 05:29:26 UTC, inside the range of the indexer export.
const fixtureStart = 1629178166

// FixtureEvents returns a small deterministic dataset for demonstration runs.
// It has one responsible borrower, one liquidated borrower, one casual
// depositor and one record with an unusable timestamp.
func FixtureEvents() []*domain.RawEvent {
	var events []*domain.RawEvent
	add := func(wallet, action string, dayOffset int, amount, price string) {
		events = append(events, &domain.RawEvent{
			UserWallet: wallet,
			TxHash:     fixtureTxHash(len(events)),
			Network:    "polygon",
			Protocol:   "aave_v2",
			Timestamp:  json.Number(strconv.Itoa(fixtureStart + dayOffset*fixtureDay)),
			Action:     action,
			ActionData: map[string]any{
				domain.ActionDataAmount:        amount,
				domain.ActionDataAssetPriceUSD: price,
				domain.ActionDataAssetSymbol:   "USDC",
			},
		})
	}

	// Responsible: long history, many deposits, repays everything
	for d := 0; d < 10; d++ {
		add(FixtureWalletResponsible, "deposit", d*12, "2000000000", "1.0")
	}
	add(FixtureWalletResponsible, "borrow", 15, "500000000", "1.0")
	for d := 0; d < 5; d++ {
		add(FixtureWalletResponsible, "repay", 20+d*10, "100000000", "1.0")
	}

	// Risky: short history, borrows heavily, liquidated three times
	add(FixtureWalletRisky, "deposit", 100, "50000000", "1.0")
	add(FixtureWalletRisky, "deposit", 101, "50000000", "1.0")
	for d := 0; d < 4; d++ {
		add(FixtureWalletRisky, "borrow", 102+d, "20000000", "1.0")
	}
	for d := 0; d < 3; d++ {
		add(FixtureWalletRisky, "liquidationcall", 110+d, "10000000", "1.0")
	}

	// Casual: a couple of deposits and an unknown action
	add(FixtureWalletCasual, "deposit", 60, "1000000", "1.0")
	add(FixtureWalletCasual, "redeemunderlying", 70, "1000000", "1.0")

	// Malformed: timestamp is not a number
	events = append(events, &domain.RawEvent{
		UserWallet: FixtureWalletCasual,
		TxHash:     fixtureTxHash(len(events)),
		Timestamp:  "yesterday",
		Action:     "deposit",
	})

	return events
}

// FixtureSource wraps FixtureEvents in an event source.
func FixtureSource() *ingestion.StaticSource {
	return ingestion.NewStaticSource(FixtureEvents())
}

func fixtureTxHash(i int) string {
	return "0xfixture" + strconv.Itoa(i)
}

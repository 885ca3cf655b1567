package ingestion

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArray = `[
  {
    "_id": {"$oid": "681d38fed63812d4655f571a"},
    "userWallet": "0x00000000001accfa9cef68cf5371a23025b6d4b6",
    "network": "polygon",
    "protocol": "aave_v2",
    "txHash": "0x695c69acf608fbf5d38e48ca5535e118cc213a89e3d6d2e66e6b0e3b2e8d4190",
    "timestamp": 1629178166,
    "action": "deposit",
    "actionData": {"type": "Deposit", "amount": "2000000000", "assetSymbol": "USDC", "assetPriceUSD": "0.9938318274296357"}
  },
  {"userWallet": 12345, "txHash": "0xbad", "timestamp": 1, "action": "deposit"},
  {"userWallet": "0xabc", "txHash": "0xdef", "timestamp": 1629178200, "action": "borrow", "actionData": {}}
]`

func TestDecodeEvents_Array(t *testing.T) {
	batch, err := DecodeEvents([]byte(sampleArray))
	require.NoError(t, err)

	require.Len(t, batch.Events, 2)
	assert.Equal(t, "0x00000000001accfa9cef68cf5371a23025b6d4b6", batch.Events[0].UserWallet)
	assert.Equal(t, json.Number("1629178166"), batch.Events[0].Timestamp)
	assert.Equal(t, "2000000000", batch.Events[0].ActionData["amount"])
	assert.Equal(t, "polygon", batch.Events[0].Network)

	require.Len(t, batch.Rejected, 1)
	assert.Equal(t, 1, batch.Rejected[0].Index)
	assert.Equal(t, FieldRecord, batch.Rejected[0].Field)

	assert.Len(t, batch.Digest, 64)
}

func TestDecodeEvents_JSONLines(t *testing.T) {
	input := `{"userWallet": "a", "txHash": "1", "timestamp": 10, "action": "deposit"}

{"userWallet": "b", "txHash": "2", "timestamp": 20, "action": "repay"}
`
	batch, err := DecodeEvents([]byte(input))
	require.NoError(t, err)
	require.Len(t, batch.Events, 2)
	assert.Equal(t, "b", batch.Events[1].UserWallet)
}

func TestDecodeEvents_InvalidJSON(t *testing.T) {
	_, err := DecodeEvents([]byte(`[{"userWallet": "a",`))
	assert.Error(t, err)

	_, err = DecodeEvents([]byte("{\"a\":1}\nnot json\n"))
	assert.Error(t, err)
}

func TestDecodeEvents_Empty(t *testing.T) {
	batch, err := DecodeEvents([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, batch.Events)
}

func TestDecodeEvents_DigestStable(t *testing.T) {
	a, err := DecodeEvents([]byte(sampleArray))
	require.NoError(t, err)
	b, err := DecodeEvents([]byte(sampleArray))
	require.NoError(t, err)
	assert.Equal(t, a.Digest, b.Digest)
}

func TestFileSource_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleArray), 0o644))

	batch, err := NewFileSource(path).Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, batch.Events, 2)

	_, err = NewFileSource(filepath.Join(t.TempDir(), "missing.json")).Load(context.Background())
	assert.Error(t, err)
}

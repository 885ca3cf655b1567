package migrations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	pg, err := load(PostgresFS, "postgres")
	require.NoError(t, err)
	require.Len(t, pg, 2)
	assert.Equal(t, "001_score_runs.sql", pg[0].name)
	assert.Equal(t, "002_wallet_scores.sql", pg[1].name)
	assert.Contains(t, pg[1].sql, "REFERENCES score_runs")

	ch, err := load(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, ch)
	for _, m := range ch {
		assert.NoError(t, validateNoSemicolonInStrings(m.sql), m.name)
	}
}

func TestSplitStatements(t *testing.T) {
	sql := `-- header comment
CREATE TABLE a (x UInt8) ENGINE = Memory;

-- second
CREATE VIEW v AS SELECT x FROM a;
`
	stmts := splitStatements(sql)
	require.Len(t, stmts, 2)
	assert.True(t, strings.HasPrefix(stmts[0], "CREATE TABLE a"))
	assert.True(t, strings.HasPrefix(stmts[1], "CREATE VIEW v"))
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	assert.NoError(t, validateNoSemicolonInStrings(`SELECT 'a''b'; SELECT 1;`))
	assert.Error(t, validateNoSemicolonInStrings(`SELECT 'a;b'`))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default:@localhost:9000/wallet_scores")
	require.NoError(t, err)
	assert.Equal(t, "wallet_scores", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000")
	assert.Error(t, err)
}

package advisor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeSQL(t *testing.T) {
	cases := map[string]string{
		"SELECT count() FROM trades":              "SELECT count() FROM trades",
		"```sql\nSELECT 1 FROM trades\n```":       "SELECT 1 FROM trades",
		"```\nSELECT 1 FROM trades;\n```":         "SELECT 1 FROM trades",
		"  SELECT sum(profit) FROM arb.trades;  ": "SELECT sum(profit) FROM arb.trades",
		"sql SELECT path FROM trades LIMIT 5":     "SELECT path FROM trades LIMIT 5",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeSQL(in))
	}
}

func TestValidateSQL(t *testing.T) {
	assert.NoError(t, validateSQL("SELECT count() FROM trades"))
	assert.NoError(t, validateSQL("SELECT path, sum(profit) FROM arb.trades GROUP BY path"))

	assert.Error(t, validateSQL(""))
	assert.Error(t, validateSQL("DROP TABLE trades"))
	assert.Error(t, validateSQL("SELECT 1 FROM trades; DROP TABLE trades"))
	assert.Error(t, validateSQL("SELECT * FROM system.tables"))
	assert.Error(t, validateSQL("SELECT 1 FROM trades WHERE 1=1 UNION SELECT name FROM trades -- INSERT "))
}

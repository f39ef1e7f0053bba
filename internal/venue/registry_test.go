package venue

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeVenueConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "venues.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestNewRegistry(t *testing.T) {
	auth, vIn, vOut, src, dst := acct(), acct(), acct(), acct(), acct()
	sink, inv, src2, dst2 := acct(), acct(), acct(), acct()

	body := fmt.Sprintf(`[
		{"name":"orca-sol-usdc","kind":"constant_product",
		 "authority":%q,"vault_in":%q,"vault_out":%q,
		 "source":%q,"destination":%q,
		 "fee_numerator":25,"fee_denominator":10000},
		{"name":"rfq-usdc-sol","kind":"rate_desk",
		 "sink":%q,"inventory":%q,"source":%q,"destination":%q,
		 "rate_numerator":1,"rate_denominator":20,"fee_bps":30}
	]`, auth, vIn, vOut, src, dst, sink, inv, src2, dst2)

	reg, err := NewRegistry(writeVenueConfig(t, body))
	require.NoError(t, err)

	assert.Equal(t, 2, reg.Count())
	assert.Equal(t, []string{"orca-sol-usdc", "rfq-usdc-sol"}, reg.Names())

	b, err := reg.Lookup("orca-sol-usdc")
	require.NoError(t, err)
	assert.Equal(t, KindConstantProduct, b.Kind())
	assert.Equal(t, src, b.Source())
	assert.Equal(t, dst, b.Destination())

	b, err = reg.Lookup("rfq-usdc-sol")
	require.NoError(t, err)
	assert.Equal(t, KindRateDesk, b.Kind())

	_, err = reg.Lookup("nope")
	assert.Error(t, err)

	// Every referenced ledger account is reported exactly once.
	assert.Len(t, reg.Accounts(), 8)
}

func TestNewRegistry_BadKey(t *testing.T) {
	body := `[{"name":"x","kind":"rate_desk","sink":"garbage","inventory":"g","source":"g","destination":"g"}]`
	_, err := NewRegistry(writeVenueConfig(t, body))
	assert.Error(t, err)
}

func TestNewRegistry_UnknownKind(t *testing.T) {
	body := fmt.Sprintf(`[{"name":"x","kind":"orderbook","source":%q,"destination":%q}]`, acct(), acct())
	_, err := NewRegistry(writeVenueConfig(t, body))
	assert.ErrorContains(t, err, "unknown venue kind")
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	sink, inv, src, dst := acct(), acct(), acct(), acct()
	entry := fmt.Sprintf(`{"name":"dup","kind":"rate_desk","sink":%q,"inventory":%q,"source":%q,"destination":%q,"rate_numerator":1,"rate_denominator":1}`,
		sink, inv, src, dst)
	_, err := NewRegistry(writeVenueConfig(t, "["+entry+","+entry+"]"))
	assert.ErrorContains(t, err, "duplicate name")
}

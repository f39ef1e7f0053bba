package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/arbengine"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/ledger"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/models"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/venue"
	"github.com/gagliardetto/solana-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubCache is an in-memory TradeCache for handler tests.
type stubCache struct {
	trades []*models.TradeEvent
}

func (s *stubCache) AddRecentTrade(ctx context.Context, trade *models.TradeEvent) error {
	s.trades = append([]*models.TradeEvent{trade}, s.trades...)
	return nil
}

func (s *stubCache) GetRecentTrades(ctx context.Context, limit int64) ([]*models.TradeEvent, error) {
	if int64(len(s.trades)) < limit {
		limit = int64(len(s.trades))
	}
	return s.trades[:limit], nil
}

func (s *stubCache) PublishTrade(ctx context.Context, trade *models.TradeEvent) error { return nil }

func (s *stubCache) SubscribeTrades(ctx context.Context) (<-chan *models.TradeEvent, error) {
	ch := make(chan *models.TradeEvent)
	close(ch)
	return ch, nil
}

func (s *stubCache) Ping(ctx context.Context) error { return nil }
func (s *stubCache) Close() error                   { return nil }

func acct() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

// newTestServer builds an echo instance over an engine with one AMM and one
// rate desk whose prices leave a profitable round trip for the home account.
func newTestServer(t *testing.T, cfg ServerConfig) (*echo.Echo, *Handlers, solana.PublicKey) {
	t.Helper()

	homeSOL := acct()
	traderUSDC := acct()
	vaultSOL := acct()
	vaultUSDC := acct()
	deskSink := acct()
	deskInventory := acct()

	dir := t.TempDir()

	venues := []venue.Config{
		{
			Name:           "amm-sol-usdc",
			Kind:           venue.KindConstantProduct,
			Authority:      acct().String(),
			VaultIn:        vaultSOL.String(),
			VaultOut:       vaultUSDC.String(),
			Source:         homeSOL.String(),
			Destination:    traderUSDC.String(),
			FeeNumerator:   25,
			FeeDenominator: 10000,
		},
		{
			Name:            "desk-usdc-sol",
			Kind:            venue.KindRateDesk,
			Sink:            deskSink.String(),
			Inventory:       deskInventory.String(),
			Source:          traderUSDC.String(),
			Destination:     homeSOL.String(),
			RateNumerator:   1,
			RateDenominator: 40,
			FeeBps:          0,
		},
	}
	venuePath := filepath.Join(dir, "venues.json")
	vb, err := json.Marshal(venues)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(venuePath, vb, 0o644))

	accounts := []ledger.AccountConfig{
		{Account: homeSOL.String(), Balance: 10_000_000, Label: "trader-sol"},
		{Account: traderUSDC.String(), Balance: 0, Label: "trader-usdc"},
		{Account: vaultSOL.String(), Balance: 1_000_000_000, Label: "amm-vault-sol"},
		{Account: vaultUSDC.String(), Balance: 50_000_000_000, Label: "amm-vault-usdc"},
		{Account: deskSink.String(), Balance: 0, Label: "desk-sink"},
		{Account: deskInventory.String(), Balance: 1_000_000_000, Label: "desk-inventory"},
	}
	bookPath := filepath.Join(dir, "book.json")
	bb, err := json.Marshal(accounts)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(bookPath, bb, 0o644))

	eng, err := arbengine.NewEngine(context.Background(), arbengine.EngineConfig{
		VenueConfigPath: venuePath,
		BookConfigPath:  bookPath,
	})
	require.NoError(t, err)

	h := &Handlers{
		Engine: eng,
		Cache:  &stubCache{},
	}

	e := echo.New()
	RegisterRoutes(e, h, cfg)
	return e, h, homeSOL
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandlers_Health(t *testing.T) {
	e, _, _ := newTestServer(t, ServerConfig{})

	rec := doJSON(e, http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
}

func TestHandlers_Venues(t *testing.T) {
	e, _, _ := newTestServer(t, ServerConfig{})

	rec := doJSON(e, http.MethodGet, "/v1/venues", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp VenuesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"amm-sol-usdc", "desk-usdc-sol"}, resp.Venues)
}

func TestHandlers_SimulateCommits(t *testing.T) {
	e, h, home := newTestServer(t, ServerConfig{})

	before, err := h.Engine.Book().Balance(home)
	require.NoError(t, err)

	body := `{"home":"` + home.String() + `","amount_in":1000000,"venues":["amm-sol-usdc","desk-usdc-sol"]}`
	rec := doJSON(e, http.MethodPost, "/v1/simulate", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	var outcome arbengine.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, arbengine.StateCommitted, outcome.State)
	assert.Positive(t, outcome.Profit)

	// Simulation never touches the live book.
	after, err := h.Engine.Book().Balance(home)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestHandlers_ExecuteAbortedIsOutcome(t *testing.T) {
	e, _, home := newTestServer(t, ServerConfig{})

	// An absurd margin forces the guard to reject the round trip; the API
	// still reports the aborted outcome rather than a transport error.
	body := `{"home":"` + home.String() + `","amount_in":1000000,"venues":["amm-sol-usdc","desk-usdc-sol"],"min_profit":1000000000}`
	rec := doJSON(e, http.MethodPost, "/v1/execute", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	var outcome arbengine.Outcome
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &outcome))
	assert.Equal(t, arbengine.StateAborted, outcome.State)
	assert.Equal(t, arbengine.KindUnprofitable, outcome.ErrorKind)
}

func TestHandlers_ExecuteValidation(t *testing.T) {
	e, _, home := newTestServer(t, ServerConfig{})

	rec := doJSON(e, http.MethodPost, "/v1/execute", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/execute", `{"home":"","amount_in":1,"venues":["a","b"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/execute", `{"home":"`+home.String()+`","amount_in":0,"venues":["a","b"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/execute", `{"home":"`+home.String()+`","amount_in":1,"venues":["amm-sol-usdc"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Unknown venue fails unit construction, not execution.
	rec = doJSON(e, http.MethodPost, "/v1/execute", `{"home":"`+home.String()+`","amount_in":1,"venues":["amm-sol-usdc","nope"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_RecentTrades(t *testing.T) {
	e, h, _ := newTestServer(t, ServerConfig{})

	cache := h.Cache.(*stubCache)
	require.NoError(t, cache.AddRecentTrade(context.Background(), &models.TradeEvent{UnitID: "unit_a", Committed: true}))
	require.NoError(t, cache.AddRecentTrade(context.Background(), &models.TradeEvent{UnitID: "unit_b", Committed: false}))

	rec := doJSON(e, http.MethodGet, "/v1/trades/recent?limit=1", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Items []*models.TradeEvent `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "unit_b", resp.Items[0].UnitID)

	rec = doJSON(e, http.MethodGet, "/v1/trades/recent?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/trades/recent?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlers_APIKey(t *testing.T) {
	e, _, _ := newTestServer(t, ServerConfig{APIKey: "sekrit"})

	rec := doJSON(e, http.MethodGet, "/v1/health", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code) // key missing

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-API-Key", "wrong")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	req.Header.Set("X-API-Key", "sekrit")
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandlers_NotFound(t *testing.T) {
	e, _, _ := newTestServer(t, ServerConfig{})

	rec := doJSON(e, http.MethodGet, "/v1/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHandlers_UnconfiguredDependencies(t *testing.T) {
	e, h, _ := newTestServer(t, ServerConfig{})
	h.Cache = nil

	rec := doJSON(e, http.MethodGet, "/v1/trades/recent", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/killswitch", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/v1/ai/ask", `{"question":"how many trades"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodGet, "/v1/quote?inputMint=a&outputMint=b&amount=1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

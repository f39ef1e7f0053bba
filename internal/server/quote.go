package server

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/jupiter"
	"github.com/labstack/echo/v4"
)

func splitCSVQuery(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		parts := strings.Split(v, ",")
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

// Quote fetches an external aggregator quote for a mint pair, as a reference
// price against internally simulated routes.
func (h *Handlers) Quote(c echo.Context) error {
	if h.Jupiter == nil {
		return h.err(c, http.StatusBadRequest, "jupiter is not configured", nil)
	}

	inputMint := strings.TrimSpace(c.QueryParam("inputMint"))
	outputMint := strings.TrimSpace(c.QueryParam("outputMint"))
	amountStr := strings.TrimSpace(c.QueryParam("amount"))

	if inputMint == "" {
		return h.err(c, http.StatusBadRequest, "invalid inputMint", map[string]any{"inputMint": "required"})
	}
	if outputMint == "" {
		return h.err(c, http.StatusBadRequest, "invalid outputMint", map[string]any{"outputMint": "required"})
	}
	amount, err := strconv.ParseUint(amountStr, 10, 64)
	if err != nil || amount == 0 {
		return h.err(c, http.StatusBadRequest, "invalid amount", map[string]any{"amount": "must be a positive uint64"})
	}

	var slippageBps *uint16
	if v := strings.TrimSpace(c.QueryParam("slippageBps")); v != "" {
		n, err := strconv.ParseUint(v, 10, 16)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid slippageBps", map[string]any{"slippageBps": "must be uint16"})
		}
		tmp := uint16(n)
		slippageBps = &tmp
	}

	var onlyDirectRoutes *bool
	if v := strings.TrimSpace(c.QueryParam("onlyDirectRoutes")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid onlyDirectRoutes", map[string]any{"onlyDirectRoutes": "must be boolean"})
		}
		onlyDirectRoutes = &b
	}

	dexes := splitCSVQuery(c.QueryParams()["dexes"])
	excludeDexes := splitCSVQuery(c.QueryParams()["excludeDexes"])

	ctx, cancel := h.withTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	out, err := h.Jupiter.Quote(ctx, jupiter.QuoteRequest{
		InputMint:        inputMint,
		OutputMint:       outputMint,
		Amount:           amount,
		SlippageBps:      slippageBps,
		OnlyDirectRoutes: onlyDirectRoutes,
		Dexes:            dexes,
		ExcludeDexes:     excludeDexes,
	})
	if err != nil {
		return h.err(c, http.StatusBadGateway, "jupiter quote failed", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, out)
}

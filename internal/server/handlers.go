package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-arb-engine/internal/advisor"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/arbengine"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/jupiter"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/killswitch"
	"github.com/aman-zulfiqar/solana-arb-engine/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// Handlers contains all dependencies for API endpoint handlers
type Handlers struct {
	Engine       *arbengine.Engine   // Unit builder and executor
	Cache        storage.TradeCache  // Redis-backed trade history cache
	Kill         *killswitch.Store   // Redis-backed venue kill switches
	AI           *advisor.Agent      // Advisor for natural language queries
	AIBaseConfig advisor.AgentConfig // Base configuration for advisor agents
	DevMode      bool                // Enable detailed error responses in development
	Logger       *logrus.Logger      // Structured logger
	Jupiter      *jupiter.Client     // Jupiter Quote API client (optional)
}

// err returns a standardized JSON error response
// In dev mode, includes additional error details for debugging
func (h *Handlers) err(c echo.Context, code int, msg string, details any) error {
	resp := ErrorResponse{Error: msg, Code: code}
	if h.DevMode && details != nil {
		resp.Details = details
	}
	return c.JSON(code, resp)
}

// withTimeout creates a context with timeout, defaulting to 10 seconds if duration <= 0
func (h *Handlers) withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = 10 * time.Second
	}
	return context.WithTimeout(ctx, d)
}

// Health returns a simple health check endpoint
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{OK: true})
}

// Venues lists the registered venue names
func (h *Handlers) Venues(c echo.Context) error {
	return c.JSON(http.StatusOK, VenuesResponse{Venues: h.Engine.Venues()})
}

// RecentTrades returns the most recent executed units with optional limit parameter
// Accepts limit query parameter (default: 100, range: 1-200)
func (h *Handlers) RecentTrades(c echo.Context) error {
	if h.Cache == nil {
		return h.err(c, http.StatusBadRequest, "trade cache is not configured", nil)
	}

	limitStr := c.QueryParam("limit")
	limit := 100
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "must be an integer"})
		}
		limit = n
	}
	if limit < 1 || limit > 200 {
		return h.err(c, http.StatusBadRequest, "invalid limit", map[string]any{"limit": "min 1 max 200"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Cache.GetRecentTrades(ctx, int64(limit))
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to get trades", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// bindIntent decodes and minimally validates a path intent body
func (h *Handlers) bindIntent(c echo.Context) (*arbengine.PathIntent, error) {
	var intent arbengine.PathIntent
	if err := c.Bind(&intent); err != nil {
		return nil, h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if strings.TrimSpace(intent.Home) == "" {
		return nil, h.err(c, http.StatusBadRequest, "home is required", map[string]any{"home": "required"})
	}
	if intent.AmountIn == 0 {
		return nil, h.err(c, http.StatusBadRequest, "amount_in must be positive", map[string]any{"amount_in": "must be > 0"})
	}
	if len(intent.Venues) < arbengine.MinHops {
		return nil, h.err(c, http.StatusBadRequest, "path too short", map[string]any{"venues": "need at least 2"})
	}
	return &intent, nil
}

// runIntent executes or simulates an intent and renders the outcome. Aborted
// units are a normal result, not a transport error, so they still return 200
// with the outcome body.
func (h *Handlers) runIntent(c echo.Context, run func(context.Context, *arbengine.PathIntent) (*arbengine.Outcome, error)) error {
	intent, err := h.bindIntent(c)
	if intent == nil {
		return err
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 15*time.Second)
	defer cancel()

	outcome, runErr := run(ctx, intent)
	if runErr != nil {
		// Unit-level aborts carry an outcome; build failures do not.
		if outcome != nil && arbengine.KindOf(runErr) != arbengine.KindNone {
			return c.JSON(http.StatusOK, outcome)
		}
		return h.err(c, http.StatusBadRequest, "unit rejected", map[string]any{"err": runErr.Error()})
	}
	return c.JSON(http.StatusOK, outcome)
}

// Simulate runs a path intent against a clone of the live book
func (h *Handlers) Simulate(c echo.Context) error {
	return h.runIntent(c, h.Engine.Simulate)
}

// Execute runs a path intent against the live book and records the result
func (h *Handlers) Execute(c echo.Context) error {
	return h.runIntent(c, h.Engine.Execute)
}

// KillList returns all disabled venues
func (h *Handlers) KillList(c echo.Context) error {
	if h.Kill == nil {
		return h.err(c, http.StatusBadRequest, "killswitch is not configured", nil)
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	items, err := h.Kill.List(ctx)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to list kill switches", nil)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

// KillDisable disables a venue so BuildUnit rejects paths through it
func (h *Handlers) KillDisable(c echo.Context) error {
	if h.Kill == nil {
		return h.err(c, http.StatusBadRequest, "killswitch is not configured", nil)
	}

	var req KillUpsertRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	if err := killswitch.ValidateVenueName(req.Venue); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid venue", map[string]any{"venue": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Kill.Disable(ctx, req.Venue, req.Reason)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to disable venue", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// KillGet retrieves the kill switch for a venue
// Returns 404 if the venue is not disabled
func (h *Handlers) KillGet(c echo.Context) error {
	if h.Kill == nil {
		return h.err(c, http.StatusBadRequest, "killswitch is not configured", nil)
	}

	name := c.Param("venue")
	if err := killswitch.ValidateVenueName(name); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid venue", map[string]any{"venue": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	out, err := h.Kill.Get(ctx, name)
	if err != nil {
		if errors.Is(err, killswitch.ErrNotFound) {
			return h.err(c, http.StatusNotFound, "venue is not disabled", nil)
		}
		return h.err(c, http.StatusInternalServerError, "failed to get kill switch", nil)
	}
	return c.JSON(http.StatusOK, out)
}

// KillEnable re-enables a venue by removing its kill switch
// Returns 204 No Content on success
func (h *Handlers) KillEnable(c echo.Context) error {
	if h.Kill == nil {
		return h.err(c, http.StatusBadRequest, "killswitch is not configured", nil)
	}

	name := c.Param("venue")
	if err := killswitch.ValidateVenueName(name); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid venue", map[string]any{"venue": "invalid format"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	if err := h.Kill.Enable(ctx, name); err != nil {
		return h.err(c, http.StatusInternalServerError, "failed to enable venue", nil)
	}
	return c.NoContent(http.StatusNoContent)
}

// AIAsk processes natural language questions about trade history
// Supports optional model override for one-off requests
// Returns SQL query and answer with execution time
func (h *Handlers) AIAsk(c echo.Context) error {
	if h.AI == nil {
		return h.err(c, http.StatusBadRequest, "advisor is not configured", nil)
	}

	var req AIAskRequest
	if err := c.Bind(&req); err != nil {
		return h.err(c, http.StatusBadRequest, "invalid json", nil)
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		return h.err(c, http.StatusBadRequest, "question is required", map[string]any{"question": "required"})
	}

	ctx, cancel := h.withTimeout(c.Request().Context(), 45*time.Second)
	defer cancel()

	start := time.Now()

	// Use default advisor or create temporary one with custom model
	agent := h.AI
	var tmp *advisor.Agent
	if m := strings.TrimSpace(req.Model); m != "" {
		cfg := h.AIBaseConfig
		cfg.Model = m
		a, err := advisor.NewAgent(ctx, cfg)
		if err != nil {
			return h.err(c, http.StatusInternalServerError, "failed to create advisor", nil)
		}
		tmp = a
		agent = a
		defer func() {
			_ = tmp.Close() // Clean up temporary agent
		}()
	}

	res, err := agent.Ask(ctx, req.Question)
	if err != nil {
		return h.err(c, http.StatusInternalServerError, "ai ask failed", map[string]any{"err": err.Error()})
	}

	return c.JSON(http.StatusOK, AIAskResponse{SQL: res.SQL, Answer: res.Answer, TookMs: time.Since(start).Milliseconds()})
}

package arbengine

// PathIntent is the external request shape: an ordered list of venue
// names plus the home account and the quoted initial size. Path selection
// happens upstream; the engine only executes what it is given.
type PathIntent struct {
	// Home is the base58 account holding the asset that begins and ends the
	// path.
	Home string `json:"home"`

	// AmountIn is the quoted trade size for hop 1, in raw token units.
	AmountIn uint64 `json:"amount_in"`

	// Venues are registry names in execution order.
	Venues []string `json:"venues"`

	// MinProfit overrides the engine's profit margin for this unit.
	MinProfit *uint64 `json:"min_profit,omitempty"`
}

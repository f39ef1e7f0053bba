package jupiter

import "strconv"

// QuoteRequest describes a reference quote lookup. Amount is the raw input
// size in base units.
type QuoteRequest struct {
	InputMint  string
	OutputMint string
	Amount     uint64

	SlippageBps      *uint16
	OnlyDirectRoutes *bool
	Dexes            []string
	ExcludeDexes     []string
}

type QuoteResponse struct {
	InputMint            string          `json:"inputMint"`
	OutputMint           string          `json:"outputMint"`
	InAmount             string          `json:"inAmount"`
	OutAmount            string          `json:"outAmount"`
	OtherAmountThreshold string          `json:"otherAmountThreshold"`
	SwapMode             string          `json:"swapMode"`
	SlippageBps          uint16          `json:"slippageBps"`
	PriceImpactPct       string          `json:"priceImpactPct"`
	RoutePlan            []RoutePlanStep `json:"routePlan"`

	ContextSlot uint64  `json:"contextSlot,omitempty"`
	TimeTaken   float64 `json:"timeTaken,omitempty"`
}

// OutAmountUint64 parses the quoted output into base units for comparison
// against an internally simulated route.
func (q *QuoteResponse) OutAmountUint64() (uint64, error) {
	return strconv.ParseUint(q.OutAmount, 10, 64)
}

type RoutePlanStep struct {
	SwapInfo SwapInfo `json:"swapInfo"`
	Percent  *uint8   `json:"percent,omitempty"`
	Bps      uint16   `json:"bps"`
}

type SwapInfo struct {
	AmmKey     string `json:"ammKey"`
	Label      string `json:"label,omitempty"`
	InputMint  string `json:"inputMint"`
	OutputMint string `json:"outputMint"`
	InAmount   string `json:"inAmount"`
	OutAmount  string `json:"outAmount"`
}

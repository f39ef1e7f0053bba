package rpc

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// TokenAmount represents token balance information
type TokenAmount struct {
	Amount         string  `json:"amount"`
	Decimals       int     `json:"decimals"`
	UIAmountString string  `json:"uiAmountString"`
	UIAmount       float64 `json:"uiAmount"`
}

// TokenAccountBalanceResponse is the response from getTokenAccountBalance
type TokenAccountBalanceResponse struct {
	Result struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value TokenAmount `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// BalanceResponse is the response from getBalance (lamports)
type BalanceResponse struct {
	Result struct {
		Context struct {
			Slot uint64 `json:"slot"`
		} `json:"context"`
		Value uint64 `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

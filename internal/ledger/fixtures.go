package ledger

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// AccountConfig is one seeded account entry in the book JSON config.
type AccountConfig struct {
	Account string `json:"account"`
	Balance uint64 `json:"balance"`
	Label   string `json:"label,omitempty"`
}

// LoadBookFromJSON seeds a new Book from a JSON file of account balances.
func LoadBookFromJSON(path string) (*Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read book config: %w", err)
	}

	var configs []AccountConfig
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse book config: %w", err)
	}

	book := NewBook()
	for i, cfg := range configs {
		acc, err := solana.PublicKeyFromBase58(cfg.Account)
		if err != nil {
			return nil, fmt.Errorf("account %d (%s): %w", i, cfg.Label, err)
		}
		book.SetBalance(acc, cfg.Balance)
	}
	return book, nil
}

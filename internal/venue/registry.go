package venue

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// Config is one venue entry in the JSON config file. Fields beyond name/kind
// are interpreted per backend kind.
type Config struct {
	Name string `json:"name"`
	Kind string `json:"kind"`

	// constant_product
	Authority string `json:"authority,omitempty"`
	VaultIn   string `json:"vault_in,omitempty"`
	VaultOut  string `json:"vault_out,omitempty"`

	// rate_desk
	Sink      string `json:"sink,omitempty"`
	Inventory string `json:"inventory,omitempty"`

	// trader accounts (both kinds)
	Source      string `json:"source"`
	Destination string `json:"destination"`

	FeeNumerator    uint64 `json:"fee_numerator,omitempty"`
	FeeDenominator  uint64 `json:"fee_denominator,omitempty"`
	RateNumerator   uint64 `json:"rate_numerator,omitempty"`
	RateDenominator uint64 `json:"rate_denominator,omitempty"`
	FeeBps          uint16 `json:"fee_bps,omitempty"`
}

// Registry holds all configured venue backends, keyed by instance name.
type Registry struct {
	backends map[string]Backend
	names    []string
}

// NewRegistry loads venue configs from a JSON file and constructs one
// backend per entry.
func NewRegistry(configPath string) (*Registry, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read venue config: %w", err)
	}

	var configs []Config
	if err := json.Unmarshal(data, &configs); err != nil {
		return nil, fmt.Errorf("failed to parse venue config: %w", err)
	}

	r := &Registry{backends: make(map[string]Backend, len(configs))}
	for i, cfg := range configs {
		b, err := buildBackend(cfg)
		if err != nil {
			return nil, fmt.Errorf("venue %d (%s): %w", i, cfg.Name, err)
		}
		if _, dup := r.backends[b.Name()]; dup {
			return nil, fmt.Errorf("venue %d: duplicate name %s", i, b.Name())
		}
		r.backends[b.Name()] = b
		r.names = append(r.names, b.Name())
	}
	return r, nil
}

func buildBackend(cfg Config) (Backend, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("name is required")
	}

	switch cfg.Kind {
	case KindConstantProduct:
		keys, err := parseKeys(cfg.Authority, cfg.VaultIn, cfg.VaultOut, cfg.Source, cfg.Destination)
		if err != nil {
			return nil, err
		}
		return NewConstProductPool(cfg.Name, keys[0], keys[1], keys[2], keys[3], keys[4],
			cfg.FeeNumerator, cfg.FeeDenominator)

	case KindRateDesk:
		keys, err := parseKeys(cfg.Sink, cfg.Inventory, cfg.Source, cfg.Destination)
		if err != nil {
			return nil, err
		}
		return NewRateDesk(cfg.Name, keys[0], keys[1], keys[2], keys[3],
			cfg.RateNumerator, cfg.RateDenominator, cfg.FeeBps)

	default:
		return nil, fmt.Errorf("unknown venue kind %q", cfg.Kind)
	}
}

func parseKeys(raw ...string) ([]solana.PublicKey, error) {
	keys := make([]solana.PublicKey, len(raw))
	for i, s := range raw {
		k, err := solana.PublicKeyFromBase58(s)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", s, err)
		}
		keys[i] = k
	}
	return keys, nil
}

// Lookup returns the backend registered under name.
func (r *Registry) Lookup(name string) (Backend, error) {
	b, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("venue not found: %s", name)
	}
	return b, nil
}

// Names returns all venue names in config order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Count returns the number of registered venues.
func (r *Registry) Count() int {
	return len(r.backends)
}

// Accounts returns every ledger account referenced by registered backends
// that lives on the trading ledger. Used by the mirror to know what to poll.
func (r *Registry) Accounts() []solana.PublicKey {
	seen := make(map[solana.PublicKey]struct{})
	var out []solana.PublicKey
	add := func(k solana.PublicKey) {
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for _, name := range r.names {
		b := r.backends[name]
		add(b.Source())
		add(b.Destination())
		switch v := b.(type) {
		case *ConstProductPool:
			add(v.vaultIn)
			add(v.vaultOut)
		case *RateDesk:
			add(v.sink)
			add(v.inventory)
		}
	}
	return out
}

package killswitch

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	indexKey    = "venues:disabled"
	valuePrefix = "venues:disabled:"
)

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9._-]{1,128}$`)

// Store is a Redis-backed set of per-venue kill switches. The engine refuses
// to build units through a disabled venue; operators flip switches through
// the API without redeploying.
type Store struct {
	client redis.Cmdable
}

func NewStore(client redis.Cmdable) (*Store, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	return &Store{client: client}, nil
}

func ValidateVenueName(name string) error {
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid venue name")
	}
	return nil
}

// Disable trips the switch for a venue.
func (s *Store) Disable(ctx context.Context, venue, reason string) (*Switch, error) {
	if err := ValidateVenueName(venue); err != nil {
		return nil, err
	}

	sw := &Switch{Venue: venue, Reason: reason, DisabledAt: time.Now().UTC()}
	b, err := json.Marshal(sw)
	if err != nil {
		return nil, fmt.Errorf("marshal switch: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, switchKey(venue), b, 0)
	pipe.SAdd(ctx, indexKey, venue)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("disable venue: %w", err)
	}
	return sw, nil
}

// Enable clears the switch for a venue.
func (s *Store) Enable(ctx context.Context, venue string) error {
	if err := ValidateVenueName(venue); err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, switchKey(venue))
	pipe.SRem(ctx, indexKey, venue)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("enable venue: %w", err)
	}
	return nil
}

// Get returns the switch for a venue, or ErrNotFound if it is enabled.
func (s *Store) Get(ctx context.Context, venue string) (*Switch, error) {
	if err := ValidateVenueName(venue); err != nil {
		return nil, err
	}

	val, err := s.client.Get(ctx, switchKey(venue)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get switch: %w", err)
	}

	var sw Switch
	if err := json.Unmarshal([]byte(val), &sw); err != nil {
		return nil, fmt.Errorf("unmarshal switch: %w", err)
	}
	return &sw, nil
}

// IsDisabled reports whether a venue's switch is tripped.
func (s *Store) IsDisabled(ctx context.Context, venue string) (bool, error) {
	_, err := s.Get(ctx, venue)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// List returns every tripped switch.
func (s *Store) List(ctx context.Context) ([]*Switch, error) {
	venues, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list disabled venues: %w", err)
	}
	if len(venues) == 0 {
		return []*Switch{}, nil
	}

	keys := make([]string, 0, len(venues))
	for _, v := range venues {
		if err := ValidateVenueName(v); err != nil {
			continue
		}
		keys = append(keys, switchKey(v))
	}
	if len(keys) == 0 {
		return []*Switch{}, nil
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("mget switches: %w", err)
	}

	out := make([]*Switch, 0, len(vals))
	for _, v := range vals {
		if v == nil {
			continue
		}
		str, ok := v.(string)
		if !ok {
			continue
		}
		var sw Switch
		if err := json.Unmarshal([]byte(str), &sw); err != nil {
			continue
		}
		out = append(out, &sw)
	}
	return out, nil
}

func switchKey(venue string) string {
	return valuePrefix + venue
}

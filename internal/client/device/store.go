/*
Package device persists the installation's device identifier.

The identifier is generated once, kept under a single well-known key of an injected
KV capability and only replaced by an explicit Set or removed by Clear.
*/
package device

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"seasnap/internal/pkg/randx"
)

// StorageKey is the KV key holding the device identifier.
const StorageKey = "4seasnap_device_id"

// ErrInvalidID is returned by Set for identifiers the server would reject.
var ErrInvalidID = errors.New("invalid device identifier")

// Store reads and writes the device identifier. Get's check-then-generate is atomic
// per Store.
type Store struct {
	kv       KV
	mu       sync.Mutex
	generate func() string
}

func NewStore(kv KV) *Store {
	return &Store{kv: kv, generate: randx.DeviceID}
}

// Lookup returns the persisted identifier without generating one.
func (s *Store) Lookup(ctx context.Context) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.lookup(ctx)
}

func (s *Store) lookup(ctx context.Context) (string, bool, error) {
	v, err := s.kv.Get(ctx, StorageKey)
	if err != nil {
		return "", false, err
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

// Get returns the persisted identifier, generating and persisting a new one when absent.
func (s *Store) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok, err := s.lookup(ctx)
	if err != nil {
		return "", err
	}
	if ok {
		return id, nil
	}

	id = s.generate()
	if err := s.kv.Set(ctx, StorageKey, []byte(id)); err != nil {
		return "", fmt.Errorf("persist device id: %w", err)
	}
	return id, nil
}

// Set overwrites the persisted identifier.
func (s *Store) Set(ctx context.Context, id string) error {
	if !randx.IsValidDeviceID(id) {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kv.Set(ctx, StorageKey, []byte(id))
}

// Clear removes the persisted identifier. The next Get generates a new one.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.kv.Delete(ctx, StorageKey)
}

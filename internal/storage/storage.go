package storage

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/eugenenazirov/binpack/internal/binpack"
)

// DefaultMaxItems bounds the working item set; the exhaustive search grows
// exponentially with the item count.
const DefaultMaxItems = 12

var (
	// ErrInvalidItems indicates the provided item sizes violate validation rules.
	ErrInvalidItems = errors.New("items must contain at least one size in (0, 1]")
	// ErrTooManyItems indicates the item set exceeds the configured maximum.
	ErrTooManyItems = errors.New("too many items")
)

var defaultItems = []float64{0.8, 0.09, 0.4, 0.7}

// Storage provides access to the working item set used when a request does
// not carry its own items.
type Storage interface {
	GetItems() ([]float64, error)
	SetItems(items []float64) error
}

// MemoryStorage keeps the item set in-memory and guards access with a RWMutex.
type MemoryStorage struct {
	mu       sync.RWMutex
	maxItems int
	items    []float64
}

// NewMemoryStorage initialises storage with a copy of the default items.
// A non-positive maxItems falls back to DefaultMaxItems.
func NewMemoryStorage(maxItems int) *MemoryStorage {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &MemoryStorage{
		maxItems: maxItems,
		items:    slices.Clone(defaultItems),
	}
}

// DefaultItems returns a copy of the sample item set.
func DefaultItems() []float64 {
	return slices.Clone(defaultItems)
}

// GetItems returns a copy of the current item set in its original order.
func (s *MemoryStorage) GetItems() ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.items), nil
}

// SetItems validates and stores a copy of the provided items.
func (s *MemoryStorage) SetItems(items []float64) error {
	if len(items) == 0 {
		return ErrInvalidItems
	}
	if len(items) > s.maxItems {
		return fmt.Errorf("%w: got %d, maximum is %d", ErrTooManyItems, len(items), s.maxItems)
	}
	if err := binpack.ValidateItems(items); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidItems, err)
	}

	s.mu.Lock()
	s.items = slices.Clone(items)
	s.mu.Unlock()

	return nil
}

// MaxItems reports the largest item set the storage accepts.
func (s *MemoryStorage) MaxItems() int {
	return s.maxItems
}

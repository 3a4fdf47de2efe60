package storage

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"testing"

	"github.com/eugenenazirov/binpack/internal/binpack"
)

func TestNewMemoryStorageReturnsDefaultItems(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage(0)

	got, err := store.GetItems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := DefaultItems()
	if !slices.Equal(got, want) {
		t.Fatalf("expected default items %v, got %v", want, got)
	}
	if store.MaxItems() != DefaultMaxItems {
		t.Fatalf("expected default max items %d, got %d", DefaultMaxItems, store.MaxItems())
	}

	// ensure mutation safety
	got[0] = 0.123
	again, err := store.GetItems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slices.Equal(again, got) {
		t.Fatalf("expected defensive copy, got %v", again)
	}
}

func TestSetItemsPreservesOrder(t *testing.T) {
	t.Parallel()

	store := NewMemoryStorage(4)
	input := []float64{0.7, 0.2, 1, 0.2}
	if err := store.SetItems(input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	input[0] = 0.9

	got, err := store.GetItems()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []float64{0.7, 0.2, 1, 0.2}; !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSetItemsRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		items   []float64
		wantErr error
	}{
		{items: nil, wantErr: ErrInvalidItems},
		{items: []float64{}, wantErr: ErrInvalidItems},
		{items: []float64{0, 0.5}, wantErr: binpack.ErrNonPositiveSize},
		{items: []float64{math.NaN()}, wantErr: binpack.ErrNonPositiveSize},
		{items: []float64{1.5}, wantErr: binpack.ErrOversizedItem},
		{items: []float64{0.1, 0.1, 0.1, 0.1}, wantErr: ErrTooManyItems},
	}

	for idx, tc := range testCases {
		tc := tc
		t.Run(fmt.Sprintf("case_%d", idx), func(t *testing.T) {
			store := NewMemoryStorage(3)
			if err := store.SetItems(tc.items); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v for %v, got %v", tc.wantErr, tc.items, err)
			}
		})
	}
}

func TestMemoryStorageConcurrentAccess(t *testing.T) {
	store := NewMemoryStorage(0)
	var wg sync.WaitGroup

	for i := 0; i < 32; i++ {
		wg.Add(2)

		go func(offset int) {
			defer wg.Done()
			items := []float64{0.25 + float64(offset)/100, 0.5}
			if err := store.SetItems(items); err != nil {
				t.Errorf("SetItems failed: %v", err)
			}
		}(i)

		go func() {
			defer wg.Done()
			if _, err := store.GetItems(); err != nil {
				t.Errorf("GetItems failed: %v", err)
			}
		}()
	}

	wg.Wait()

	// final read should succeed
	if _, err := store.GetItems(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

package binpack

import (
	"fmt"
	"math"
	"slices"
)

type backtrackingSolver struct{}

// New creates a Solver based on exhaustive backtracking search.
func New() Solver {
	return &backtrackingSolver{}
}

func (s *backtrackingSolver) Feasible(items []float64, bins int) (bool, error) {
	if err := ValidateItems(items); err != nil {
		return false, err
	}
	if bins < 0 {
		return false, fmt.Errorf("%w, got %d", ErrNegativeBins, bins)
	}
	return feasible(items, bins), nil
}

func (s *backtrackingSolver) MinBins(items []float64) (int, error) {
	if err := ValidateItems(items); err != nil {
		return 0, err
	}
	bins, ok := minBins(items)
	if !ok {
		return 0, fmt.Errorf("%w for %d items", ErrNoSolution, len(items))
	}
	return bins, nil
}

func (s *backtrackingSolver) Assign(items []float64) ([]int, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}
	bins, ok := minBins(items)
	if !ok {
		return nil, fmt.Errorf("%w for %d items", ErrNoSolution, len(items))
	}

	assignment := make([]int, len(items))
	for bin := 1; bin <= bins; bin++ {
		for idx := range items {
			if assignment[idx] != unassigned {
				continue
			}
			assignment[idx] = bin
			// Committed loads are repacked as pseudo-items; a placement is kept
			// only while the whole state still fits the optimal bin count.
			if got, ok := minBins(residual(items, assignment, bin)); !ok || got != bins {
				assignment[idx] = unassigned
			}
		}
	}

	if idx := slices.Index(assignment, unassigned); idx >= 0 {
		return nil, fmt.Errorf("%w: item %d (size %g)", ErrIncompleteAssignment, idx, items[idx])
	}
	if _, err := Verify(items, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// ValidateItems checks that every size lies in (0, Capacity].
func ValidateItems(items []float64) error {
	for idx, size := range items {
		switch {
		case math.IsNaN(size) || size <= 0:
			return fmt.Errorf("%w: item %d has size %g", ErrNonPositiveSize, idx, size)
		case size > Capacity:
			return fmt.Errorf("%w: item %d has size %g", ErrOversizedItem, idx, size)
		}
	}
	return nil
}

func feasible(items []float64, bins int) bool {
	if len(items) == 0 {
		return true
	}
	if bins <= 0 {
		return false
	}

	sorted := slices.Clone(items)
	slices.Sort(sorted)

	capacities := make([]float64, bins)
	for i := range capacities {
		capacities[i] = Capacity
	}
	return pack(sorted, capacities)
}

// pack places the last item of items into every bin with room for it and
// recurses on the rest. capacities is restored before returning.
func pack(items, capacities []float64) bool {
	if len(items) == 0 {
		return true
	}

	last := len(items) - 1
	size := items[last]
	for i, free := range capacities {
		if !fits(size, free) {
			continue
		}
		capacities[i] = free - size
		ok := pack(items[:last], capacities)
		capacities[i] = free
		if ok {
			return true
		}
	}
	return false
}

func minBins(items []float64) (int, bool) {
	return minBinsWithin(items, len(items))
}

// minBinsWithin scans bin counts 0..limit inclusive. No instance ever needs
// more bins than items, so limit = len(items) always finds an answer for
// sizes within capacity.
func minBinsWithin(items []float64, limit int) (int, bool) {
	for n := 0; n <= limit; n++ {
		if feasible(items, n) {
			return n, true
		}
	}
	return 0, false
}

// residual returns the sizes of unassigned items followed by the loads of
// bins 1..upTo.
func residual(items []float64, assignment []int, upTo int) []float64 {
	loads := make([]float64, upTo)
	out := make([]float64, 0, len(items)+upTo)
	for idx, size := range items {
		bin := assignment[idx]
		if bin == unassigned {
			out = append(out, size)
			continue
		}
		loads[bin-1] += size
	}
	return append(out, loads...)
}

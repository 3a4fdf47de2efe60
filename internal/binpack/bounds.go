package binpack

import (
	"fmt"
	"math"
)

// LowerBound returns the continuous lower bound ceil(sum of sizes).
func LowerBound(items []float64) (int, error) {
	if err := ValidateItems(items); err != nil {
		return 0, err
	}
	total := 0.0
	for _, size := range items {
		total += size
	}
	return int(math.Ceil(total/Capacity - fitTolerance)), nil
}

// FirstFit places every item, in order, into the first bin with room for it,
// opening a new bin when none has. Bin indices are 1-based.
func FirstFit(items []float64) ([]int, error) {
	if err := ValidateItems(items); err != nil {
		return nil, err
	}

	assignment := make([]int, len(items))
	free := make([]float64, 0, len(items))
	for idx, size := range items {
		for bin, space := range free {
			if fits(size, space) {
				free[bin] = space - size
				assignment[idx] = bin + 1
				break
			}
		}
		if assignment[idx] == unassigned {
			free = append(free, Capacity-size)
			assignment[idx] = len(free)
		}
	}
	return assignment, nil
}

// UpperBound returns the number of bins used by FirstFit.
func UpperBound(items []float64) (int, error) {
	assignment, err := FirstFit(items)
	if err != nil {
		return 0, err
	}
	upper := 0
	for _, bin := range assignment {
		upper = max(upper, bin)
	}
	return upper, nil
}

// Verify checks that assignment maps every item to a bin in 1..k, that every
// bin in that range holds at least one item and that no bin exceeds Capacity.
// It returns the load of each bin.
func Verify(items []float64, assignment []int) ([]float64, error) {
	if len(items) != len(assignment) {
		return nil, fmt.Errorf("%w: %d items but %d bin indices", ErrInvalidAssignment, len(items), len(assignment))
	}

	bins := 0
	for idx, bin := range assignment {
		if bin < 1 {
			return nil, fmt.Errorf("%w: item %d has bin index %d", ErrInvalidAssignment, idx, bin)
		}
		bins = max(bins, bin)
	}

	loads := make([]float64, bins)
	counts := make([]int, bins)
	for idx, bin := range assignment {
		loads[bin-1] += items[idx]
		counts[bin-1]++
	}
	for bin, load := range loads {
		if counts[bin] == 0 {
			return nil, fmt.Errorf("%w: bin %d is empty", ErrInvalidAssignment, bin+1)
		}
		if load > Capacity+fitTolerance {
			return nil, fmt.Errorf("%w: bin %d holds %g", ErrInvalidAssignment, bin+1, load)
		}
	}
	return loads, nil
}

// Summarize verifies assignment and bundles it with its bin loads.
func Summarize(items []float64, assignment []int) (Packing, error) {
	loads, err := Verify(items, assignment)
	if err != nil {
		return Packing{}, err
	}
	return Packing{
		Assignment: assignment,
		Bins:       len(loads),
		Loads:      loads,
	}, nil
}

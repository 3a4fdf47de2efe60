package binpack

// Capacity is the size of every bin.
const Capacity = 1.0

// fitTolerance absorbs float rounding when an item is compared against the
// remaining space of a bin, so that 0.1+0.2+0.7 still fits a single bin.
const fitTolerance = 1e-9

// unassigned marks an item that has not been placed into a bin yet.
const unassigned = 0

// Packing summarises an assignment together with the derived bin loads.
type Packing struct {
	Assignment []int
	Bins       int
	Loads      []float64
}

// Solver describes the behaviour required from a bin packing solver.
type Solver interface {
	// Feasible reports whether items can be packed into the given number of bins.
	Feasible(items []float64, bins int) (bool, error)
	// MinBins returns the smallest bin count for which Feasible succeeds.
	MinBins(items []float64) (int, error)
	// Assign returns a 1-based bin index per item using exactly MinBins bins.
	Assign(items []float64) ([]int, error)
}

func fits(size, free float64) bool {
	return size <= free+fitTolerance
}

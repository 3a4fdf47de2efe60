// Package binpack solves small unit-capacity bin packing instances by
// exhaustive backtracking. It offers a feasibility oracle, a minimum bin
// count search built on it, and an assignment search that derives a concrete
// item to bin mapping using exactly the minimum number of bins.
//
// Item sizes are fractions of a bin in (0, 1]. The search is exponential in
// the number of items; callers are expected to cap input size.
package binpack

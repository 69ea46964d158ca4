// Package ordering implements the subset scheduler: it partitions the set
// of acquisition angle indices into the ordered sequence of blocks the
// iterative algorithms sweep during each gradient pass.
package ordering

import (
	"errors"
	"fmt"
	"math/rand"

	"tomorecon/pkg/geometry"
)

// ErrInvalidConfiguration is returned for block sizes that cannot partition
// the angle set or for unknown strategy names.
var ErrInvalidConfiguration = errors.New("ordering: invalid configuration")

// Strategy selects how angle indices are ordered before being split into
// blocks. The strategy is resolved once, at configuration time.
type Strategy int

const (
	// Ordered keeps the acquisition order and splits it into contiguous blocks.
	Ordered Strategy = iota
	// Random permutes the indices with a seedable source, then splits.
	Random
	// AngularDistance greedily orders indices so that each next angle
	// maximizes the minimum angular distance to the angles already placed.
	// Early blocks then cover the angular range as evenly as possible.
	AngularDistance
)

// ParseStrategy resolves a strategy name from configuration.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "ordered", "":
		return Ordered, nil
	case "random":
		return Random, nil
	case "angularDistance":
		return AngularDistance, nil
	default:
		return 0, fmt.Errorf("%w: unknown order strategy %q", ErrInvalidConfiguration, name)
	}
}

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case Ordered:
		return "ordered"
	case Random:
		return "random"
	case AngularDistance:
		return "angularDistance"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// Partition is an ordered sequence of index blocks into the angle set.
// Blocks are non-empty, pairwise disjoint, and jointly cover every index
// exactly once.
type Partition [][]int

// New partitions the indices of angles into blocks of blockSize according
// to the strategy. The last block may be smaller when blockSize does not
// divide the angle count. The seed is only consulted by the Random
// strategy; fixing it makes the partition reproducible.
func New(angles []geometry.Angle, blockSize int, strategy Strategy, seed int64) (Partition, error) {
	n := len(angles)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty angle set", ErrInvalidConfiguration)
	}
	if blockSize <= 0 || blockSize > n {
		return nil, fmt.Errorf("%w: block size %d outside [1, %d]", ErrInvalidConfiguration, blockSize, n)
	}

	var order []int
	switch strategy {
	case Ordered:
		order = identityOrder(n)
	case Random:
		order = identityOrder(n)
		rng := rand.New(rand.NewSource(seed))
		rng.Shuffle(n, func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})
	case AngularDistance:
		order = angularOrder(angles)
	default:
		return nil, fmt.Errorf("%w: unknown strategy %d", ErrInvalidConfiguration, int(strategy))
	}

	return split(order, blockSize), nil
}

func identityOrder(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	return order
}

// angularOrder builds a coverage-maximizing sequence: starting from the
// first index, it repeatedly appends the remaining index whose minimum
// angular distance to all placed indices is largest.
func angularOrder(angles []geometry.Angle) []int {
	n := len(angles)
	order := make([]int, 0, n)
	used := make([]bool, n)

	order = append(order, 0)
	used[0] = true

	// minDist[j] tracks the distance from j to the closest placed angle.
	minDist := make([]float64, n)
	for j := 1; j < n; j++ {
		minDist[j] = geometry.AngularDistance(angles[j], angles[0])
	}

	for len(order) < n {
		best := -1
		for j := 0; j < n; j++ {
			if used[j] {
				continue
			}
			if best < 0 || minDist[j] > minDist[best] {
				best = j
			}
		}
		order = append(order, best)
		used[best] = true
		for j := 0; j < n; j++ {
			if used[j] {
				continue
			}
			if d := geometry.AngularDistance(angles[j], angles[best]); d < minDist[j] {
				minDist[j] = d
			}
		}
	}
	return order
}

func split(order []int, blockSize int) Partition {
	var parts Partition
	for start := 0; start < len(order); start += blockSize {
		end := start + blockSize
		if end > len(order) {
			end = len(order)
		}
		parts = append(parts, order[start:end:end])
	}
	return parts
}

package ordering

import (
	"errors"
	"reflect"
	"testing"

	"tomorecon/pkg/geometry"
)

// checkPartitionInvariant verifies blocks are non-empty, pairwise disjoint,
// and jointly cover all n indices exactly once.
func checkPartitionInvariant(t *testing.T, parts Partition, n int) {
	t.Helper()

	seen := make(map[int]bool)
	for bi, block := range parts {
		if len(block) == 0 {
			t.Fatalf("block %d is empty", bi)
		}
		for _, idx := range block {
			if idx < 0 || idx >= n {
				t.Fatalf("block %d contains out-of-range index %d", bi, idx)
			}
			if seen[idx] {
				t.Fatalf("index %d appears more than once", idx)
			}
			seen[idx] = true
		}
	}
	if len(seen) != n {
		t.Fatalf("partition covers %d indices, want %d", len(seen), n)
	}
}

func TestOrderedPartition(t *testing.T) {
	angles := geometry.EquallySpaced(8)

	parts, err := New(angles, 4, Ordered, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	want := Partition{{0, 1, 2, 3}, {4, 5, 6, 7}}
	if !reflect.DeepEqual(parts, want) {
		t.Errorf("ordered partition = %v, want %v", parts, want)
	}
}

func TestPartitionInvariants(t *testing.T) {
	for _, tc := range []struct {
		name      string
		strategy  Strategy
		n         int
		blockSize int
	}{
		{"ordered divides", Ordered, 12, 4},
		{"ordered remainder", Ordered, 10, 4},
		{"random divides", Random, 12, 3},
		{"random remainder", Random, 11, 4},
		{"angular divides", AngularDistance, 16, 4},
		{"angular single", AngularDistance, 7, 1},
		{"full block", Ordered, 5, 5},
	} {
		t.Run(tc.name, func(t *testing.T) {
			angles := geometry.EquallySpaced(tc.n)
			parts, err := New(angles, tc.blockSize, tc.strategy, 42)
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			checkPartitionInvariant(t, parts, tc.n)
		})
	}
}

func TestRandomPartitionReproducible(t *testing.T) {
	angles := geometry.EquallySpaced(20)

	a, err := New(angles, 5, Random, 1234)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	b, err := New(angles, 5, Random, 1234)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("same seed produced different partitions:\n%v\n%v", a, b)
	}

	c, err := New(angles, 5, Random, 99)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if reflect.DeepEqual(a, c) {
		t.Errorf("different seeds produced identical partitions (possible but indicates a fixed source)")
	}
}

func TestAngularDistanceSpreadsEarly(t *testing.T) {
	// With 4 uniform angles the second pick must be the one diametrically
	// opposite the first.
	angles := geometry.EquallySpaced(4)

	parts, err := New(angles, 1, AngularDistance, 0)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if parts[0][0] != 0 {
		t.Errorf("first index = %d, want 0", parts[0][0])
	}
	if parts[1][0] != 2 {
		t.Errorf("second index = %d, want 2 (opposite of 0)", parts[1][0])
	}
}

func TestInvalidBlockSizes(t *testing.T) {
	angles := geometry.EquallySpaced(4)

	for _, size := range []int{0, -1, 5} {
		if _, err := New(angles, size, Ordered, 0); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("block size %d: got err %v, want ErrInvalidConfiguration", size, err)
		}
	}

	if _, err := New(nil, 1, Ordered, 0); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("empty angle set: got err %v, want ErrInvalidConfiguration", err)
	}
}

func TestParseStrategy(t *testing.T) {
	for name, want := range map[string]Strategy{
		"ordered":         Ordered,
		"":                Ordered,
		"random":          Random,
		"angularDistance": AngularDistance,
	} {
		got, err := ParseStrategy(name)
		if err != nil {
			t.Errorf("ParseStrategy(%q) failed: %v", name, err)
		}
		if got != want {
			t.Errorf("ParseStrategy(%q) = %v, want %v", name, got, want)
		}
	}

	if _, err := ParseStrategy("bogus"); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("unknown strategy: got err %v, want ErrInvalidConfiguration", err)
	}
}

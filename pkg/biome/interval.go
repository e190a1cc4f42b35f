package biome

import (
	"fmt"
	"sort"

	"github.com/yumyai/emgapi/pkg/model"
)

// Interval is the (lft, rgt) pair of a nested-set node.
type Interval struct {
	Lft int
	Rgt int
}

func IntervalOf(n model.BiomeNode) Interval {
	return Interval{Lft: n.Lft, Rgt: n.Rgt}
}

// Contains is strict containment.
func (i Interval) Contains(o Interval) bool {
	return i.Lft < o.Lft && o.Rgt < i.Rgt
}

// IsDescendantOf reports whether b sits below a in the tree.
func IsDescendantOf(b, a model.BiomeNode) bool {
	return IntervalOf(a).Contains(IntervalOf(b)) && b.Depth > a.Depth
}

// IsChildOf is IsDescendantOf restricted to the next level.
func IsChildOf(b, a model.BiomeNode) bool {
	return IsDescendantOf(b, a) && b.Depth == a.Depth+1
}

// Validate checks a forest before it is imported: bounds are ordered and
// unique, two intervals either nest strictly or are disjoint, and each
// node's depth is one more than its tightest enclosing node (1 for roots).
// Gaps between bounds are allowed.
func Validate(nodes []model.BiomeNode) error {
	bounds := make(map[int]string, 2*len(nodes))
	lineages := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if n.Lft >= n.Rgt {
			return fmt.Errorf("biome %q: lft %d must be below rgt %d", n.Lineage, n.Lft, n.Rgt)
		}
		if lineages[n.Lineage] {
			return fmt.Errorf("biome %q: duplicate lineage", n.Lineage)
		}
		lineages[n.Lineage] = true
		for _, b := range []int{n.Lft, n.Rgt} {
			if other, ok := bounds[b]; ok {
				return fmt.Errorf("biome %q: bound %d already used by %q", n.Lineage, b, other)
			}
			bounds[b] = n.Lineage
		}
	}

	sorted := make([]model.BiomeNode, len(nodes))
	copy(sorted, nodes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lft < sorted[j].Lft })

	// open holds the chain of enclosing nodes of the current position
	var open []model.BiomeNode
	for _, n := range sorted {
		for len(open) > 0 && open[len(open)-1].Rgt < n.Lft {
			open = open[:len(open)-1]
		}
		want := 1
		if len(open) > 0 {
			parent := open[len(open)-1]
			iv, pv := IntervalOf(n), IntervalOf(parent)
			if !pv.Contains(iv) {
				return fmt.Errorf("biome %q overlaps %q", n.Lineage, parent.Lineage)
			}
			want = parent.Depth + 1
		}
		if n.Depth != want {
			return fmt.Errorf("biome %q: depth %d, expected %d", n.Lineage, n.Depth, want)
		}
		open = append(open, n)
	}
	return nil
}

package resolve

import (
	"strings"

	"github.com/strataconf/strata/internal/schema"
)

// Axis is one sweep dimension: a dotted key and the ordered values it takes.
type Axis struct {
	Key    string
	Values []string
}

// Point is one element of a sweep: the resolved mapping for a single
// combination, plus the axis overrides that produced it (for run naming and
// reporting).
type Point struct {
	// Index is the point's position in iteration order, starting at 0.
	Index int

	// Overrides holds one entry per axis, in axis declaration order.
	Overrides []Entry

	// Mapping is the fully resolved mapping for this combination.
	Mapping Mapping
}

// SweepIter lazily yields the Cartesian product of all sweep axes, one
// resolved mapping per combination.
//
// Iteration order is row-major over axis declaration order: the
// first-declared axis varies slowest, the last-declared axis fastest.
// With axes a=[1,2] and b=[x,y,z] the order is (1,x) (1,y) (1,z) (2,x)
// (2,y) (2,z).
type SweepIter struct {
	schema *schema.Schema
	base   []Set
	axes   []Axis
	next   int
	total  int
}

// Sweep splits the sweep-source sets into axes and plain overrides, then
// returns an iterator over every combination. An entry in a sweep-source set
// whose value contains a comma declares an axis with the comma-separated
// values in declared order; other sweep entries are plain highest-priority
// overrides applied to every point. Axis keys are validated against the
// schema up front so an unknown key fails before any point is produced.
// With no axes the iterator yields exactly one point.
func Sweep(s *schema.Schema, sets ...Set) (*SweepIter, error) {
	it := &SweepIter{schema: s, total: 1}

	for _, set := range sets {
		if set.Source != SourceSweep {
			it.base = append(it.base, set)
			continue
		}
		plain := Set{Source: SourceSweep, Name: set.Name}
		for _, entry := range set.Entries {
			raw, ok := entry.Value.(string)
			if ok && strings.Contains(raw, ",") {
				if _, ok := s.Lookup(entry.Key); !ok {
					return nil, &Error{Key: entry.Key, Msg: "unknown configuration key"}
				}
				values := strings.Split(raw, ",")
				for i := range values {
					values[i] = strings.TrimSpace(values[i])
				}
				it.axes = append(it.axes, Axis{Key: entry.Key, Values: values})
				it.total *= len(values)
				continue
			}
			plain.Entries = append(plain.Entries, entry)
		}
		if len(plain.Entries) > 0 {
			it.base = append(it.base, plain)
		}
	}

	return it, nil
}

// Len returns the total number of points the iterator will yield.
func (it *SweepIter) Len() int {
	return it.total
}

// Axes returns the sweep axes in declaration order.
func (it *SweepIter) Axes() []Axis {
	out := make([]Axis, len(it.axes))
	copy(out, it.axes)
	return out
}

// Next resolves and returns the next point, or nil when the sweep is
// exhausted. Each point's mapping is independently resolved, so points
// share no mutable state.
func (it *SweepIter) Next() (*Point, error) {
	if it.next >= it.total {
		return nil, nil
	}

	point := &Point{Index: it.next}
	sets := make([]Set, len(it.base), len(it.base)+1)
	copy(sets, it.base)

	if len(it.axes) > 0 {
		axisSet := Set{Source: SourceSweep}
		// Decompose the index last-axis-fastest so the first-declared axis
		// varies slowest.
		rem := it.next
		picks := make([]int, len(it.axes))
		for i := len(it.axes) - 1; i >= 0; i-- {
			n := len(it.axes[i].Values)
			picks[i] = rem % n
			rem /= n
		}
		for i, axis := range it.axes {
			entry := Entry{Key: axis.Key, Value: axis.Values[picks[i]]}
			axisSet.Entries = append(axisSet.Entries, entry)
			point.Overrides = append(point.Overrides, entry)
		}
		sets = append(sets, axisSet)
	}

	m, err := Resolve(it.schema, sets...)
	if err != nil {
		return nil, err
	}
	point.Mapping = m
	it.next++
	return point, nil
}

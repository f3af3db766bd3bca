package resolve

import (
	"sort"

	"github.com/strataconf/strata/internal/schema"
)

// Resolve merges the given override sets against the schema's defaults into
// a single nested mapping. Sets are applied in ascending source priority;
// sets sharing a source keep their argument order. Every entry key must
// resolve to a declared field path, otherwise Resolve fails with an *Error
// naming the key. Resolution is all-or-nothing: on error no mapping is
// returned.
func Resolve(s *schema.Schema, sets ...Set) (Mapping, error) {
	ordered := make([]Set, len(sets))
	copy(ordered, sets)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Source < ordered[j].Source
	})

	m := deepCopyMap(s.Defaults())
	for _, set := range ordered {
		for _, entry := range set.Entries {
			if _, ok := s.Lookup(entry.Key); !ok {
				return nil, &Error{Key: entry.Key, Msg: "unknown configuration key"}
			}
			setPath(m, entry.Key, entry.Value)
		}
	}
	return Mapping(m), nil
}

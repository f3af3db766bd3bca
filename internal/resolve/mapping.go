package resolve

import (
	"sort"
	"strings"
)

// Mapping is the nested result of applying override sets to schema defaults.
// It is transient: it exists between resolution and materialization (or on
// disk as a run artifact) and carries no validation guarantees of its own.
type Mapping map[string]any

// Clone returns a deep copy. Nested maps are copied recursively; slices are
// copied shallowly since resolution never mutates list elements in place.
func (m Mapping) Clone() Mapping {
	return Mapping(deepCopyMap(m))
}

// Get retrieves the value at a dotted path. The second return is false when
// any segment is absent or a non-map is traversed.
func (m Mapping) Get(path string) (any, bool) {
	segments := strings.Split(path, ".")
	var cur any = map[string]any(m)
	for _, seg := range segments {
		node, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = node[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Flatten returns the mapping's leaves as dotted-key entries, sorted by key
// for deterministic output.
func (m Mapping) Flatten() []Entry {
	var entries []Entry
	flattenMap(map[string]any(m), "", &entries)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

func flattenMap(node map[string]any, prefix string, entries *[]Entry) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := v.(map[string]any); ok {
			flattenMap(nested, key, entries)
			continue
		}
		*entries = append(*entries, Entry{Key: key, Value: v})
	}
}

// setPath writes value at the dotted path, creating intermediate maps as
// needed. A scalar already present on an intermediate segment is replaced by
// a map, matching last-writer-wins for the shape itself.
func setPath(m map[string]any, path string, value any) {
	segments := strings.Split(path, ".")
	cur := m
	for _, seg := range segments[:len(segments)-1] {
		next, ok := cur[seg].(map[string]any)
		if !ok {
			next = make(map[string]any)
			cur[seg] = next
		}
		cur = next
	}

	leaf := segments[len(segments)-1]
	// A map value merges recursively into an existing map rather than
	// replacing it wholesale, so partial record overrides keep siblings.
	if incoming, ok := value.(map[string]any); ok {
		if existing, ok := cur[leaf].(map[string]any); ok {
			mergeMaps(existing, incoming)
			return
		}
		cur[leaf] = deepCopyMap(incoming)
		return
	}
	cur[leaf] = value
}

// mergeMaps merges src into dst recursively, src winning on scalar
// collisions.
func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		if sm, ok := v.(map[string]any); ok {
			if dm, ok := dst[k].(map[string]any); ok {
				mergeMaps(dm, sm)
				continue
			}
			dst[k] = deepCopyMap(sm)
			continue
		}
		dst[k] = v
	}
}

func deepCopyMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			dst[k] = deepCopyMap(nested)
			continue
		}
		if list, ok := v.([]any); ok {
			cp := make([]any, len(list))
			copy(cp, list)
			dst[k] = cp
			continue
		}
		dst[k] = v
	}
	return dst
}

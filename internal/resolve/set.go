package resolve

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source identifies where an override set originated. The ordinal value is
// the set's priority: higher sources win on key collisions.
type Source int

const (
	// SourceDefaults is the schema's own declared defaults, the lowest layer.
	SourceDefaults Source = iota

	// SourceFile is a base configuration file.
	SourceFile

	// SourceEnv is process environment variables.
	SourceEnv

	// SourceFlags is command-line key=value overrides.
	SourceFlags

	// SourceSweep is a sweep-axis override within a multirun.
	SourceSweep

	// SourceReplay is a persisted resolved mapping re-ingested for replay.
	// It outranks everything else so a replayed run reproduces exactly.
	SourceReplay
)

// String returns the source name used in provenance output.
func (s Source) String() string {
	switch s {
	case SourceDefaults:
		return "defaults"
	case SourceFile:
		return "file"
	case SourceEnv:
		return "env"
	case SourceFlags:
		return "flags"
	case SourceSweep:
		return "sweep"
	case SourceReplay:
		return "replay"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// Entry is one (dotted key, raw value) pair within an override set.
type Entry struct {
	Key   string
	Value any
}

// Set is one prioritized source of configuration input: an ordered sequence
// of entries plus the source they came from. Name is optional provenance
// detail, such as the file path for a file set.
type Set struct {
	Source  Source
	Name    string
	Entries []Entry
}

// FromArgs parses command-line override tokens of the form key.subkey=value
// into a flags-priority set. Token order is preserved. A token without an
// equals sign, or with an empty key, yields an *Error naming the token.
func FromArgs(args []string) (Set, error) {
	set := Set{Source: SourceFlags}
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return Set{}, &Error{Key: arg, Msg: "malformed override, expected key=value"}
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return Set{}, &Error{Key: arg, Msg: "malformed override, empty key"}
		}
		set.Entries = append(set.Entries, Entry{Key: key, Value: strings.TrimSpace(value)})
	}
	return set, nil
}

// FromEnv collects environment variables carrying the given prefix into an
// env-priority set. The prefix is stripped, the remainder is lowercased, and
// a double underscore becomes a dot, so STRATA_MODEL__MAX_DEPTH=6 maps to
// model.max_depth. environ is typically os.Environ().
func FromEnv(prefix string, environ []string) Set {
	set := Set{Source: SourceEnv, Name: prefix}
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		key = strings.ToLower(strings.TrimPrefix(key, prefix))
		key = strings.ReplaceAll(key, "__", ".")
		if key == "" {
			continue
		}
		set.Entries = append(set.Entries, Entry{Key: key, Value: value})
	}
	return set
}

// FromYAMLFile reads a hierarchical YAML document and flattens its nested
// mappings into dotted-key entries, preserving document order. Scalar values
// keep the type the YAML parser gives them (string, int, float, bool);
// sequences stay as a single list value on their leaf key.
func FromYAMLFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{}, fmt.Errorf("read config file: %w", err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return Set{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	set := Set{Source: SourceFile, Name: path}
	if len(root.Content) == 0 {
		return set, nil
	}
	if err := flattenYAML(root.Content[0], "", &set.Entries); err != nil {
		return Set{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return set, nil
}

// flattenYAML walks a mapping node depth-first, appending one entry per leaf
// in document order.
func flattenYAML(node *yaml.Node, prefix string, entries *[]Entry) error {
	if node.Kind != yaml.MappingNode {
		var value any
		if err := node.Decode(&value); err != nil {
			return err
		}
		*entries = append(*entries, Entry{Key: prefix, Value: value})
		return nil
	}

	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		key := keyNode.Value
		if prefix != "" {
			key = prefix + "." + key
		}
		if err := flattenYAML(valueNode, key, entries); err != nil {
			return err
		}
	}
	return nil
}

package profile

import (
	"fmt"
	"strings"
)

// ModalValue is a fixture value that may differ per test mode, written as
// `lite_train_lite_infer=2|whole_train_whole_infer=300`. A value without
// mode tags applies to every mode.
type ModalValue struct {
	fixed  string
	byMode map[Mode]string
}

// parseModal parses a possibly mode-tagged value. Mixing tagged and untagged
// segments is rejected: a fixture either commits to per-mode values or not.
func parseModal(value string) (ModalValue, error) {
	if value == "" {
		return ModalValue{}, nil
	}
	segments := strings.Split(value, "|")

	tagged := strings.Contains(segments[0], "=")
	if !tagged {
		if len(segments) > 1 {
			return ModalValue{}, fmt.Errorf("untagged value %q has alternatives; mode tags are required", value)
		}
		return ModalValue{fixed: value}, nil
	}

	mv := ModalValue{byMode: make(map[Mode]string, len(segments))}
	for _, seg := range segments {
		label, v, ok := strings.Cut(seg, "=")
		if !ok {
			return ModalValue{}, fmt.Errorf("segment %q in %q is missing a mode tag", seg, value)
		}
		mode, err := ParseMode(label)
		if err != nil {
			return ModalValue{}, fmt.Errorf("value %q: %w", value, err)
		}
		if _, dup := mv.byMode[mode]; dup {
			return ModalValue{}, fmt.Errorf("value %q tags mode %q twice", value, mode)
		}
		mv.byMode[mode] = v
	}
	return mv, nil
}

// For returns the value for the given mode and whether one is defined.
func (v ModalValue) For(mode Mode) (string, bool) {
	if v.byMode != nil {
		val, ok := v.byMode[mode]
		return val, ok
	}
	if v.fixed == "" {
		return "", false
	}
	return v.fixed, true
}

// IsZero reports whether the value carries nothing at all.
func (v ModalValue) IsZero() bool {
	return v.fixed == "" && len(v.byMode) == 0
}

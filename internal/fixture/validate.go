package fixture

import (
	"fmt"
	"strings"
)

// Validate enforces the structural rules of the fixture format:
//
//   - exactly one `##` separator, partitioning header from trainer block;
//   - every non-separator, non-banner, non-blank line contains a colon;
//   - at most one raw command line, and only as the last non-blank entry of
//     the trainer block.
//
// The first violation is returned with its line number.
func (f *File) Validate() error {
	separators := 0
	for _, e := range f.Entries {
		if e.Kind == KindSeparator {
			separators++
		}
	}
	if separators != 1 {
		return fmt.Errorf("fixture must contain exactly one \"##\" separator, found %d", separators)
	}

	for _, e := range f.Entries {
		switch e.Kind {
		case KindPair, KindSeparator, KindBanner, KindBlank:
			// Pairs contain a colon by construction.
		case KindCommand:
			if !strings.Contains(e.Raw, ":") {
				return fmt.Errorf("line %d: no colon in non-separator line %q", e.Line, e.Raw)
			}
		}
	}

	commands := 0
	for _, e := range f.Header() {
		if e.Kind == KindCommand {
			return fmt.Errorf("line %d: raw command %q before the \"##\" separator", e.Line, e.Raw)
		}
	}
	trainer := f.Trainer()
	lastContent := -1
	for i, e := range trainer {
		if e.Kind != KindBlank {
			lastContent = i
		}
	}
	for i, e := range trainer {
		if e.Kind != KindCommand {
			continue
		}
		commands++
		if commands > 1 {
			return fmt.Errorf("line %d: more than one raw command line", e.Line)
		}
		if i != lastContent {
			return fmt.Errorf("line %d: raw command %q is not the final line of the trainer block", e.Line, e.Raw)
		}
	}

	return nil
}

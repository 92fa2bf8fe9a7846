package fixture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Kind classifies a single fixture line.
type Kind int

const (
	// KindPair is a `key:value` line.
	KindPair Kind = iota
	// KindSeparator is the `##` section boundary.
	KindSeparator
	// KindBanner is a cosmetic `===...===` line.
	KindBanner
	// KindCommand is a raw shell command line.
	KindCommand
	// KindBlank is an empty or whitespace-only line.
	KindBlank
)

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindPair:
		return "pair"
	case KindSeparator:
		return "separator"
	case KindBanner:
		return "banner"
	case KindCommand:
		return "command"
	case KindBlank:
		return "blank"
	}
	return "unknown"
}

// NullValue is the literal a fixture uses to mark a key as present but unset.
const NullValue = "null"

// Entry is a single classified line of a fixture file.
type Entry struct {
	Line  int // 1-based line number in the source file
	Kind  Kind
	Key   string // set for KindPair only
	Value string // set for KindPair only
	Raw   string // the original line, without the trailing newline
}

// IsNull reports whether a pair entry carries the unset marker as its value.
func (e Entry) IsNull() bool {
	return e.Kind == KindPair && e.Value == NullValue
}

// File is a parsed fixture: the ordered list of entries plus the source path
// when the fixture was read from disk.
type File struct {
	Path    string
	Entries []Entry
}

// Parse reads a fixture from r and classifies every line. It never fails on
// content; only read errors are returned. Use Validate to check structure.
func Parse(r io.Reader) (*File, error) {
	f := &File{}
	scanner := bufio.NewScanner(r)
	// Command templates can be long; the default 64KiB token limit is kept.
	line := 0
	for scanner.Scan() {
		line++
		f.Entries = append(f.Entries, classify(line, scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return f, nil
}

// ParseFile reads and parses the fixture at path.
func ParseFile(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening fixture: %w", err)
	}
	defer file.Close()

	f, err := Parse(file)
	if err != nil {
		return nil, err
	}
	f.Path = path
	return f, nil
}

// classify assigns a kind to one raw line. Pair detection requires the text
// before the first colon to be free of whitespace; a shell command such as
// `sed -i 's/random_seed: None/...'` contains colons too, but always after
// the first word boundary.
func classify(line int, raw string) Entry {
	// Fixtures produced on Windows carry CRLF endings.
	text := strings.TrimSuffix(raw, "\r")
	trimmed := strings.TrimSpace(text)

	e := Entry{Line: line, Raw: text}
	switch {
	case trimmed == "":
		e.Kind = KindBlank
	case trimmed == "##":
		e.Kind = KindSeparator
	case len(trimmed) >= 6 && strings.HasPrefix(trimmed, "===") && strings.HasSuffix(trimmed, "==="):
		e.Kind = KindBanner
	default:
		idx := strings.Index(trimmed, ":")
		if idx >= 0 && !strings.ContainsAny(trimmed[:idx], " \t") {
			e.Kind = KindPair
			e.Key = trimmed[:idx]
			e.Value = trimmed[idx+1:]
		} else {
			e.Kind = KindCommand
		}
	}
	return e
}

// Header returns the entries before the `##` separator. If no separator is
// present the whole file is treated as the header.
func (f *File) Header() []Entry {
	for i, e := range f.Entries {
		if e.Kind == KindSeparator {
			return f.Entries[:i]
		}
	}
	return f.Entries
}

// Trainer returns the entries after the `##` separator, or nil if the file
// has no separator.
func (f *File) Trainer() []Entry {
	for i, e := range f.Entries {
		if e.Kind == KindSeparator {
			return f.Entries[i+1:]
		}
	}
	return nil
}

// Lookup returns the value for key, searching the whole file. The last
// occurrence wins, matching how downstream tooling reads these files top to
// bottom. Entries whose key is the `null` placeholder are ignored. The
// second return distinguishes a missing key from an empty value; a `null`
// value is reported as present.
func (f *File) Lookup(key string) (string, bool) {
	value, found := "", false
	for _, e := range f.Entries {
		if e.Kind == KindPair && e.Key == key && e.Key != NullValue {
			value, found = e.Value, true
		}
	}
	return value, found
}

// Pairs returns all pair entries in file order, including null-valued ones.
func (f *File) Pairs() []Entry {
	var pairs []Entry
	for _, e := range f.Entries {
		if e.Kind == KindPair {
			pairs = append(pairs, e)
		}
	}
	return pairs
}

// Command returns the raw shell command from the trainer block, if any.
func (f *File) Command() (string, bool) {
	for _, e := range f.Trainer() {
		if e.Kind == KindCommand {
			return strings.TrimSpace(e.Raw), true
		}
	}
	return "", false
}

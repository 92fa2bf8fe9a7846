package yamlpatch

import (
	"fmt"
	"regexp"
	"strings"
)

// Substitution is one `s/old/new/flags` operation.
type Substitution struct {
	Pattern *regexp.Regexp
	Replace string
	Global  bool

	// raw is the pattern text as written, kept for Key extraction and errors.
	raw string
}

// Key returns the YAML key the substitution targets, derived from the
// pattern text (`^?key: value` → `key`). It returns "" when the pattern does
// not look like a YAML scalar line.
func (s Substitution) Key() string {
	text := strings.TrimPrefix(s.raw, "^")
	idx := strings.Index(text, ":")
	if idx <= 0 {
		return ""
	}
	key := text[:idx]
	if strings.ContainsAny(key, " \t") {
		return ""
	}
	return key
}

// Patch is a parsed stream-edit command: an ordered list of substitutions
// and the single file they apply to.
type Patch struct {
	File string
	Subs []Substitution
}

// Substitutions returns the parsed operations in command order.
func (p *Patch) Substitutions() []Substitution {
	return p.Subs
}

// ParseSedCommand parses a fixture's trailing command of the form
//
//	sed -i 's/old/new/g; s/old2/new2/g' path/to/config.yaml
//	sed -i -e 's/old/new/g' -e 's/old2/new2/g' path/to/config.yaml
//
// Only in-place substitution commands are accepted; anything else in a
// fixture is a mistake the harness should surface, not execute.
func ParseSedCommand(cmd string) (*Patch, error) {
	words, err := splitWords(strings.TrimSpace(cmd))
	if err != nil {
		return nil, err
	}
	if len(words) == 0 || words[0] != "sed" {
		return nil, fmt.Errorf("not a sed command: %q", cmd)
	}

	inPlace := false
	var scripts []string
	var files []string
	for i := 1; i < len(words); i++ {
		w := words[i]
		switch {
		case w == "-i" || strings.HasPrefix(w, "-i"):
			// A suffix after -i would create backup files the harness
			// never cleans up, so it is rejected.
			if w != "-i" {
				return nil, fmt.Errorf("unsupported sed backup suffix in %q", w)
			}
			inPlace = true
		case w == "-e":
			if i+1 >= len(words) {
				return nil, fmt.Errorf("sed -e flag without an expression")
			}
			i++
			scripts = append(scripts, words[i])
		case strings.HasPrefix(w, "-"):
			return nil, fmt.Errorf("unsupported sed flag %q", w)
		default:
			if len(scripts) == 0 {
				scripts = append(scripts, w)
			} else {
				files = append(files, w)
			}
		}
	}

	if !inPlace {
		return nil, fmt.Errorf("only in-place (-i) sed commands are supported")
	}
	if len(files) != 1 {
		return nil, fmt.Errorf("expected exactly one target file, got %d", len(files))
	}
	if len(scripts) == 0 {
		return nil, fmt.Errorf("sed command has no expressions")
	}

	p := &Patch{File: files[0]}
	for _, script := range scripts {
		for _, expr := range strings.Split(script, ";") {
			expr = strings.TrimSpace(expr)
			if expr == "" {
				continue
			}
			sub, err := parseSubstitution(expr)
			if err != nil {
				return nil, err
			}
			p.Subs = append(p.Subs, sub)
		}
	}
	return p, nil
}

// parseSubstitution parses a single `s<delim>old<delim>new<delim>flags`
// expression. The delimiter is taken from the character after `s`.
func parseSubstitution(expr string) (Substitution, error) {
	if len(expr) < 4 || expr[0] != 's' {
		return Substitution{}, fmt.Errorf("unsupported sed expression %q (only substitutions are allowed)", expr)
	}
	delim := expr[1]

	var parts []string
	var cur strings.Builder
	escaped := false
	for i := 2; i < len(expr); i++ {
		c := expr[i]
		switch {
		case escaped:
			if c != delim {
				cur.WriteByte('\\')
			}
			cur.WriteByte(c)
			escaped = false
		case c == '\\':
			escaped = true
		case c == delim:
			parts = append(parts, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	parts = append(parts, cur.String())

	if len(parts) != 3 {
		return Substitution{}, fmt.Errorf("malformed substitution %q", expr)
	}

	pattern, err := regexp.Compile(parts[0])
	if err != nil {
		return Substitution{}, fmt.Errorf("substitution pattern %q: %w", parts[0], err)
	}

	flags := parts[2]
	for _, f := range flags {
		if f != 'g' {
			return Substitution{}, fmt.Errorf("unsupported substitution flag %q in %q", string(f), expr)
		}
	}

	return Substitution{
		Pattern: pattern,
		Replace: parts[1],
		Global:  strings.Contains(flags, "g"),
		raw:     parts[0],
	}, nil
}

// splitWords splits a command line into words, honoring single and double
// quotes the way a POSIX shell does for simple cases.
func splitWords(s string) ([]string, error) {
	var words []string
	var cur strings.Builder
	inWord := false
	var quote byte

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			} else {
				cur.WriteByte(c)
			}
		case c == '\'' || c == '"':
			quote = c
			inWord = true
		case c == ' ' || c == '\t':
			if inWord {
				words = append(words, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteByte(c)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %q quote in command", string(quote))
	}
	if inWord {
		words = append(words, cur.String())
	}
	return words, nil
}

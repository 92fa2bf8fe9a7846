package yamlpatch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Apply rewrites the patch's target file in place, resolved relative to
// workdir when the path is not absolute. Substitutions run line by line in
// command order, matching the stream-edit semantics the fixture was written
// for. The patched content must still parse as YAML, otherwise the file is
// left untouched and an error is returned.
func (p *Patch) Apply(workdir string) error {
	path := p.File
	if workdir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(workdir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading patch target: %w", err)
	}

	patched, applied := p.rewrite(string(data))
	if applied == 0 {
		return fmt.Errorf("no substitution matched in %s", path)
	}

	var node yaml.Node
	if err := yaml.Unmarshal([]byte(patched), &node); err != nil {
		return fmt.Errorf("patched %s is no longer valid YAML: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat patch target: %w", err)
	}
	if err := os.WriteFile(path, []byte(patched), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing patch target: %w", err)
	}
	return nil
}

// rewrite applies every substitution to content and returns the result plus
// the number of substitutions that matched at least once.
func (p *Patch) rewrite(content string) (string, int) {
	lines := strings.Split(content, "\n")
	applied := 0
	for _, sub := range p.Subs {
		matched := false
		for i, line := range lines {
			if !sub.Pattern.MatchString(line) {
				continue
			}
			matched = true
			if sub.Global {
				lines[i] = sub.Pattern.ReplaceAllString(line, sub.Replace)
			} else {
				// First occurrence on the line only.
				loc := sub.Pattern.FindStringIndex(line)
				lines[i] = line[:loc[0]] + sub.Pattern.ReplaceAllString(line[loc[0]:loc[1]], sub.Replace) + line[loc[1]:]
			}
		}
		if matched {
			applied++
		}
	}
	return strings.Join(lines, "\n"), applied
}

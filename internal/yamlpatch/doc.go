// Package yamlpatch interprets the raw stream-edit command a fixture carries
// on its final line. Instead of shelling out to sed, the harness parses the
// command into substitution operations and applies them itself, then checks
// that the patched file is still well-formed YAML before writing it back.
package yamlpatch

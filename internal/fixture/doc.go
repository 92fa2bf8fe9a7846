// Package fixture parses flat key:value pipeline fixture files.
//
// A fixture is a newline-delimited list of entries. Most lines are
// `key:value` pairs where the first colon is the delimiter and the value may
// itself contain colons, paths, or embedded command-line text. A single `##`
// line partitions the file into a header block (pipeline parameters) and a
// trainer block (command templates). `===...===` banner lines are cosmetic
// and carry no meaning. The trainer block may end with a raw shell command
// that the harness executes against the pipeline's YAML config.
//
// The parser is deliberately permissive: it classifies every line and keeps
// the full ordered entry list so that Validate can report structural
// problems with exact line numbers instead of failing mid-scan.
package fixture

// Package profile decodes a parsed fixture into a typed pipeline profile:
// model name, interpreter, device alternatives, per-mode iteration values,
// trainer command templates and the trailing config patch command. The
// profile is the format-agnostic model the rest of the harness works with;
// nothing downstream of Decode touches raw fixture entries.
package profile

// Package suite loads HCL suite manifests. A manifest names the fixtures a
// harness run should exercise, the modes for each, and run-wide settings
// (results store, report upload, worker count). The HCL-tagged schema
// structs are translated into a format-agnostic Suite model; nothing outside
// this package sees HCL types.
package suite

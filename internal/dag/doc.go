// Package dag models a harness run as a dependency graph of pipeline steps
// and executes it with a bounded worker pool. Each fixture/mode pair
// contributes a chain (patch → train → export → infer); chains from
// different runs are independent, so a failure skips its own downstream
// steps without stopping the rest of the suite.
package dag

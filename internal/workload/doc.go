// Package workload generates the benchmark file set and provides the line
// reader every strategy uses to consume it.
package workload

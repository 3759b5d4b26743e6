// Package strategy defines the common interface every concurrency strategy
// implements, the ordered registry the benchmark runner iterates, and the
// built-in strategies: sequential, thread-per-file, cooperative tasks,
// structured async, isolated workers and a bounded worker pool.
package strategy

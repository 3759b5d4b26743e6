// Package bench runs every registered strategy against one workload, strictly
// one after another, and records a timed result for each. A failing or
// panicking strategy is contained in its own result so that the remaining
// strategies still run.
package bench

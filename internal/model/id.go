package model

import "github.com/oklog/ulid/v2"

// NewID generates a new ULID string identifying a benchmark run.
func NewID() string {
	return ulid.Make().String()
}

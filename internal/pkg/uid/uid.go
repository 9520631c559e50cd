// Package uid generates identifiers: numeric, time-ordered ids for database
// rows and string ids for request correlation.
package uid

// NumberID generates monotonically increasing int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}

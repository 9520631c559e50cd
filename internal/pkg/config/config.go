// Package config exposes read-only, key based access to runtime settings.
// Keys are dotted paths such as "modules.otp.ttl_minutes". A missing key
// reads as its registered default, or the zero value.
package config

import "time"

type Config interface {
	GetBool(key string) bool
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetFloat64(key string) float64
	GetString(key string) string

	// GetArray splits a comma separated value, trimming blanks and dropping
	// empty elements. Lists are kept as strings so a single environment
	// variable can override them.
	GetArray(key string) []string

	// Duration getters read an integer key in the named unit.
	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration

	Close() error
}

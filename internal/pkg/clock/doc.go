// Package clock provides a tiny time abstraction.
//
// Business code depends on Clocker instead of calling time.Now directly so
// expiry windows and rate-limit windows can be driven deterministically in
// tests with a Manual clock.
package clock

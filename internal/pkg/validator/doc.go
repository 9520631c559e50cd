// Package validator checks inbound request structs with struct tags.
//
// Failures come back as V10ValidationError, a snake_case field to message
// map that the router renders under the "error" key of the response body.
// The "password" tag enforces the 8 to 72 character bound bcrypt accepts.
package validator

// Package logging builds the process zerolog logger and exposes a small
// structured Logger interface for the HTTP server, which tests replace
// with a silent implementation.
package logging

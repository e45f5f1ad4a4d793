// Package logging defines the structured logger used across the rover
// simulator and a zerolog-backed implementation.
//
// Components depend on the Logger interface rather than on zerolog directly,
// so tests can pass NewNoopLogger() and the CLI can pick console or JSON
// output at startup.
package logging

// Package logging provides the structured Logger used by labwork, backed by
// zerolog. Console output is human-readable; file output is JSON rotated by
// lumberjack.
package logging

// Package version contains information on the current version of the program.
// It is split from the main program for easy use.
package version

// Current is the string representing the current version of kelp.
const Current = "0.1.0"

// ServerCurrent is the string representing the current version of kelpd, the
// kelp server.
const ServerCurrent = "0.1.0"

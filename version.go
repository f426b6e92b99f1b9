// Package aot holds build metadata for the aot tool.
package aot

// Version is the version of the aot command-line tool.
const Version = "0.1.0"

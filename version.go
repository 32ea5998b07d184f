// Package aieramcp provides the version information for aiera-mcp.
package aieramcp

// Version is the current version of aiera-mcp.
const Version = "0.1.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

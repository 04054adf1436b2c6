// Package ptr builds pointers for the optional *bool fields in MCP tool annotations.
package ptr

// Bool returns a pointer to the given bool value.
func Bool(b bool) *bool { return &b }

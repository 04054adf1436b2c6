// Package format renders Drive file metadata for tool output.
package format

import "fmt"

// ByteSize returns a human-readable size using binary units, or "" for zero
// (Drive reports no size for folders and native Google files).
func ByteSize(n int64) string {
	if n <= 0 {
		return ""
	}
	if n < 1024 {
		return fmt.Sprintf("%d B", n)
	}
	v := float64(n) / 1024
	units := "KMGTPE"
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %cB", v, units[i])
}

// Dimensions renders image pixel dimensions, or "" when Drive has not
// extracted them.
func Dimensions(width, height int64) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	return fmt.Sprintf("%d×%d px", width, height)
}

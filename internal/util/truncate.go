package util

import "fmt"

// DefaultLogMaxLen is the maximum length for truncated log output (1KB).
// Forwarded request and response bodies can be large; logs only need the head.
const DefaultLogMaxLen = 1024

// TruncateLog truncates long strings for verbose logging while keeping the
// total size visible for diagnostics.
func TruncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + fmt.Sprintf("... [truncated, %d bytes total]", len(s))
}

// TruncateBytes is a convenience wrapper for TruncateLog that accepts []byte
// and uses DefaultLogMaxLen.
func TruncateBytes(b []byte) string {
	return TruncateLog(string(b), DefaultLogMaxLen)
}

package handlers

import (
	"os"
	"strings"
)

// IsVerbose reports whether verbose request/response logging is enabled.
// Controlled by the SOPY_VERBOSE environment variable ("1" or "true").
func IsVerbose() bool {
	v := strings.ToLower(os.Getenv("SOPY_VERBOSE"))
	return v == "1" || v == "true"
}

package common

import "strings"

// FirstNonBlank returns the first value that is not empty after trimming
// whitespace, or "" if there is none. The value is returned trimmed.
func FirstNonBlank(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

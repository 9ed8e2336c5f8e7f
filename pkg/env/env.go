// Package env reads process environment variables that sit outside the
// envconfig-managed config structs, such as LOG_FORMAT and PORT.
package env

import "os"

// Get returns the variable's value, or the fallback when it is unset or empty.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package env

import "os"

// Prefix namespaces the service's variables, matching the config loader.
const Prefix = "PRICING_"

// Get returns PRICING_<key> when set, then the bare key, then the fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(Prefix + key); val != "" {
		return val
	}
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

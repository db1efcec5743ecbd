package env

import "os"

// Vars set outside the envconfig namespace (tooling, container images) may
// still use the service prefix; honor both spellings.
const prefix = "PGROOM_"

// Get returns the named variable or a fallback, preferring the prefixed
// form. Blank values count as unset.
func Get(key, fallback string) string {
	for _, name := range []string{prefix + key, key} {
		if val, ok := os.LookupEnv(name); ok && val != "" {
			return val
		}
	}
	return fallback
}

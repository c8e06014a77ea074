package procedure

import "strings"

// DetectSystem classifies a free-text complaint into one of the registered
// system keys, or "" when no pattern matches. Evaluation is case-insensitive
// substring matching against each system's keyword set, in catalog
// registration order; the first match wins. An empty result is not an error,
// it is the trigger for legacy topic tracking.
func DetectSystem(message string) string {
	lower := strings.ToLower(message)
	for i := range catalog {
		for _, kw := range catalog[i].Keywords {
			if strings.Contains(lower, kw) {
				return catalog[i].System
			}
		}
	}
	return ""
}

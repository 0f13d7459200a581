package services

import "strings"

// MatchKeywords returns the subset of keywords contained in text, compared
// case-insensitively. Results follow the order of the keywords slice; nil
// means no keyword matched.
func MatchKeywords(text string, keywords []string) []string {
	lower := strings.ToLower(text)

	var found []string
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			found = append(found, kw)
		}
	}
	return found
}

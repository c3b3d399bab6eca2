// Package safety holds the local crisis-phrase filter applied to outgoing
// chat text. It is plain substring matching.
package safety

import "strings"

// crisisPhrases are matched case-insensitively anywhere in the text.
var crisisPhrases = []string{
	"hurt myself",
	"suicide",
	"end it all",
	"kill myself",
	"self harm",
}

// Phrases returns the list of phrases the filter looks for.
func Phrases() []string {
	out := make([]string, len(crisisPhrases))
	copy(out, crisisPhrases)
	return out
}

// Detect reports whether text contains a crisis phrase.
func Detect(text string) bool {
	lower := strings.ToLower(text)
	for _, p := range crisisPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// Resource is a help line shown on the crisis overlay.
type Resource struct {
	Name    string
	Contact string
}

// Resources lists what the crisis overlay shows.
var Resources = []Resource{
	{Name: "988 Suicide & Crisis Lifeline", Contact: "Call or text 988"},
	{Name: "Crisis Text Line", Contact: "Text HOME to 741741"},
}

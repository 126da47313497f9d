package intent

import "strings"

// contactVocabulary is the fixed set of terms that mark a message as asking
// for human sales contact. Substring matching is deliberately blunt: a phrase
// like "I'll email you the spec" also flags, and that is accepted behavior
// rather than something to second-guess here.
var contactVocabulary = []string{
	"contact",
	"sales",
	"phone",
	"email",
	"call",
	"demo",
	"meeting",
	"speak",
	"talk",
	"reach",
}

// IsContactIntent reports whether message contains any contact-related term.
// Pure and deterministic: same input, same answer.
func IsContactIntent(message string) bool {
	lowered := strings.ToLower(message)
	for _, term := range contactVocabulary {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}

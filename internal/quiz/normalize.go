package quiz

import "strings"

// guessPunct is stripped from guesses and answers before comparison.
const guessPunct = ".,/#!$%^&*;:{}=-_`~()"

// Normalize strips punctuation and lower-cases s.
func Normalize(s string) string {
	stripped := strings.Map(func(r rune) rune {
		if strings.ContainsRune(guessPunct, r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(stripped)
}

// AnswerTokens returns the normalized whitespace-separated words of answer.
func AnswerTokens(answer string) []string {
	return strings.Fields(Normalize(answer))
}

// Evaluate reports whether the normalized guess equals one of the answer
// tokens. An empty guess never matches.
func Evaluate(guess, answer string) bool {
	normalized := Normalize(guess)
	if normalized == "" {
		return false
	}
	for _, token := range AnswerTokens(answer) {
		if token == normalized {
			return true
		}
	}
	return false
}

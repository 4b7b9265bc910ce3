// Package sentiment provides the lightweight real-time classification
// applied to a user's spoken transcript: a lexicon polarity label plus an
// escalation keyword scan. It is pure and stateless; the processing
// pipeline does not depend on it, but the inline driver uses it to emit
// escalation events during live sessions.
package sentiment

import "strings"

type Emotion string

const (
	Positive Emotion = "positive"
	Negative Emotion = "negative"
	Neutral  Emotion = "neutral"
)

// escalationKeywords flag content that needs more than a companion's
// reply. Matching is case-insensitive substring search.
var escalationKeywords = []string{
	"kill myself", "suicide", "end it all", "can't go on", "hopeless",
	"want to die", "goodbye cruel world", "no reason to live",
	"self-harm", "hurting myself",
	"want to end it",
}

var positiveWords = map[string]struct{}{
	"happy": {}, "glad": {}, "wonderful": {}, "great": {}, "good": {},
	"joy": {}, "love": {}, "grateful": {}, "hopeful": {}, "excited": {},
	"better": {}, "calm": {}, "proud": {}, "nice": {}, "fun": {},
}

var negativeWords = map[string]struct{}{
	"sad": {}, "awful": {}, "terrible": {}, "lonely": {}, "anxious": {},
	"angry": {}, "afraid": {}, "scared": {}, "hopeless": {}, "miserable": {},
	"worse": {}, "tired": {}, "hurt": {}, "cry": {}, "bad": {}, "pointless": {},
}

// Analyze returns the dominant emotion label for the text and whether any
// escalation keyword is present.
func Analyze(text string) (Emotion, bool) {
	if strings.TrimSpace(text) == "" {
		return Neutral, false
	}

	lower := strings.ToLower(text)

	escalate := false
	for _, kw := range escalationKeywords {
		if strings.Contains(lower, kw) {
			escalate = true
			break
		}
	}

	score := 0
	for _, word := range strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && r != '\''
	}) {
		if _, ok := positiveWords[word]; ok {
			score++
		}
		if _, ok := negativeWords[word]; ok {
			score--
		}
	}

	switch {
	case score > 0:
		return Positive, escalate
	case score < 0:
		return Negative, escalate
	default:
		return Neutral, escalate
	}
}

// Package mood derives numeric scores and trend insights from stored
// profiles. Pure functions only; persistence and presentation live
// elsewhere.
package mood

import (
	"strings"

	"github.com/solacelabs/solace/internal/profile"
)

// tagWeights adjust the base mood score for tags that describe the user's
// disposition.
var tagWeights = map[string]float64{
	"withdrawn": -2,
	"open":      2,
	"angry":     -1,
	"anxious":   -1,
	"hopeful":   2,
}

// Score maps one profile to a number suitable for trend comparison.
// Higher is better.
func Score(rec profile.Record) float64 {
	var score float64

	switch strings.ToLower(rec.Mood) {
	case "happy", "hopeful":
		score = 2
	case "sad", "lonely", "anxious":
		score = -1
	}

	for _, tag := range rec.ProfileTags {
		tag = strings.TrimPrefix(strings.ToLower(tag), "#")
		if w, ok := tagWeights[tag]; ok {
			score += w
		}
	}

	return score
}

// Insight compares the two most recent scores (oldest first).
func Insight(scores []float64) string {
	if len(scores) < 2 {
		return "Insufficient data for mood analysis"
	}
	recent, previous := scores[len(scores)-1], scores[len(scores)-2]
	switch {
	case recent > previous:
		return "You seem more positive than last time"
	case recent < previous:
		return "You seem less positive than last time"
	default:
		return "Your mood has remained stable"
	}
}

// degradationWindow is how many consecutive samples must be
// non-increasing before Degradation warns.
const degradationWindow = 7

// Degradation reports whether the most recent scores show a consistent
// downward drift, and a human-readable assessment.
func Degradation(scores []float64) (bool, string) {
	if len(scores) < degradationWindow {
		return false, "Insufficient data for trend analysis"
	}

	recent := scores[len(scores)-degradationWindow:]
	for i := 0; i < len(recent)-1; i++ {
		if recent[i] < recent[i+1] {
			return false, "No significant degradation detected"
		}
	}
	return true, "Warning: mood has been consistently worsening over the last 7 conversations"
}

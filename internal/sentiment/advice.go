package sentiment

import "math/rand"

var copingStrategies = map[Emotion][]string{
	Positive: {
		"That's wonderful to hear! Keep embracing that positivity.",
		"It's great that you're feeling good. What's bringing you joy right now?",
		"Hold onto that positive feeling! Remember what contributes to it.",
		"Sounds like you're in a great headspace. Keep shining!",
	},
	Negative: {
		"I'm sorry to hear you're feeling this way. Remember to be kind to yourself.",
		"It's okay to feel down sometimes. Try taking a few deep breaths.",
		"Focus on one small thing you can control right now. Even a small step helps.",
		"Remember that feelings are temporary. Can you think of one thing that usually makes you feel a bit better?",
		"Consider reaching out to someone you trust, or perhaps engage in a calming activity.",
	},
	Neutral: {
		"Thanks for sharing. Is there anything specific on your mind?",
		"Okay, understood. How is your day going overall?",
		"Sometimes just being is okay. No need to force a feeling.",
	},
}

// Advice picks a supportive line for the detected emotion.
func Advice(emotion Emotion) string {
	lines, ok := copingStrategies[emotion]
	if !ok {
		return "It's important to acknowledge how you feel. Tell me more if you like."
	}
	return lines[rand.Intn(len(lines))]
}

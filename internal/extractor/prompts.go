package extractor

const extractionPrompt = `Analyze the following conversation transcript. Based *only* on the content of the transcript, generate a JSON object containing the following fields:
- "user_name": Infer the user's name if mentioned, otherwise use "Unknown".
- "mood": Identify the dominant overall mood (e.g., "lonely", "anxious", "grateful", "neutral", "sad", "frustrated", "happy").
- "emotion_trend": Describe any noticeable shift in emotion during the conversation (e.g., "started sad, ended neutral", "consistently positive", "increasing frustration").
- "topics": List key topics discussed (e.g., ["family", "work stress", "health concerns", "hobbies", "memories"]). Max 5 topics.
- "profile_tags": Generate 3-5 relevant tags describing the user's potential situation or personality based on the conversation (e.g., ["#grieving", "#seeking_reassurance", "#storyteller", "#caregiver", "#optimistic"]). Use hashtags.
- "persona_summary": Write a brief (1-2 sentences) summary capturing the essence of the user's state and potential needs as revealed *in this conversation*.

**IMPORTANT RULES:**
1. Respond *only* with the valid JSON object. Do not include any explanatory text before or after the JSON.
2. If a field cannot be determined from the transcript, use a reasonable default (like "Unknown", "neutral", empty list [], or a generic statement).
3. Base the analysis *strictly* on the provided transcript text. Do not invent information.

Transcript:
---
%s
---

JSON Output:`

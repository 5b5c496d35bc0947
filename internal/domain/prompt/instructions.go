package prompt

const jsonOnly = " Respond with a single JSON object and nothing else."

var instructions = map[Feature]string{
	FeatureEnhanceBio: "You polish dating profile bios. Rewrite the given bio in first person, " +
		"warm and specific, under 120 words, keeping every fact and adding none. " +
		`Output schema: {"bio": string}.`,
	FeatureEnhanceHobbies: "You improve the hobbies section of a dating profile. Clean up and " +
		"normalize the listed hobbies, keep at most 10, and write a one sentence summary. " +
		`Output schema: {"items": [string], "summary": string}.`,
	FeatureEnhanceMovies: "You improve the favourite movies section of a dating profile. Fix titles " +
		"to their common spelling, keep at most 10, and write a one sentence summary of the taste. " +
		`Output schema: {"items": [string], "summary": string}.`,
	FeatureEnhanceMusic: "You improve the favourite music section of a dating profile. Normalize " +
		"artist and genre names, keep at most 10, and write a one sentence summary of the taste. " +
		`Output schema: {"items": [string], "summary": string}.`,
	FeatureExtractHoroscope: "You are a Vedic astrologer. From the birth date, time and place " +
		"derive the western sun sign, the moon sign (rashi), the nakshatra, the ascendant (lagna) " +
		"and whether the person is manglik. Leave a field empty when it cannot be derived. " +
		`Output schema: {"sunSign": string, "moonSign": string, "nakshatra": string, ` +
		`"ascendant": string, "manglik": boolean, "summary": string}.`,
	FeatureHoroscopeCompatibility: "You are a Vedic astrologer performing Ashtakoota (guna milan) " +
		"matching of two horoscopes. Score out of 36 and list strengths and concerns. " +
		`Output schema: {"score": number, "maxScore": 36, "verdict": string, ` +
		`"strengths": [string], "concerns": [string]}.`,
	FeatureMatchSuggestions: "You are a matchmaker. Rank the candidates by compatibility with the " +
		"profile using values, lifestyle, interests and location. Only use candidate ids that were " +
		"given. Score each from 0 to 100 with a one sentence reason. " +
		`Output schema: {"matches": [{"id": string, "score": integer, "reason": string}]}.`,
}

// Instruction returns the system instruction for f.
func Instruction(f Feature) string {
	return instructions[f] + jsonOnly
}

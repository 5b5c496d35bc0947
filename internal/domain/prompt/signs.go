package prompt

import "strings"

var signs = []string{
	"Aries", "Taurus", "Gemini", "Cancer", "Leo", "Virgo",
	"Libra", "Scorpio", "Sagittarius", "Capricorn", "Aquarius", "Pisces",
}

// Vedic rashi names map onto the same twelve signs.
var rashis = map[string]string{
	"mesha": "Aries", "vrishabha": "Taurus", "mithuna": "Gemini", "karka": "Cancer",
	"simha": "Leo", "kanya": "Virgo", "tula": "Libra", "vrishchika": "Scorpio",
	"dhanu": "Sagittarius", "makara": "Capricorn", "kumbha": "Aquarius", "meena": "Pisces",
}

// CanonicalSign maps a zodiac or rashi name in any case to its canonical
// western spelling.
func CanonicalSign(s string) (string, bool) {
	k := strings.ToLower(strings.TrimSpace(s))
	if k == "" {
		return "", false
	}
	for _, sign := range signs {
		if strings.ToLower(sign) == k {
			return sign, true
		}
	}
	if sign, ok := rashis[k]; ok {
		return sign, true
	}
	return "", false
}

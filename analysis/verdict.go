package analysis

import "strings"

// Verdict is the rule-derived suitability outcome.
type Verdict string

const (
	Suitable    Verdict = "Suitable"
	NotSuitable Verdict = "Not Suitable"
)

// StrengthToken is counted by KeywordVerdict.
const StrengthToken = "Strength"

// MinStrengths is the number of StrengthToken occurrences needed for a
// Suitable verdict.
const MinStrengths = 2

// VerdictPolicy decides the verdict from a finished narrative.
type VerdictPolicy func(narrative string) Verdict

// KeywordVerdict counts the literal, case-sensitive StrengthToken.
func KeywordVerdict(narrative string) Verdict {
	if strings.Count(narrative, StrengthToken) >= MinStrengths {
		return Suitable
	}
	return NotSuitable
}

// VerdictBlock is appended to the narrative once generation ends.
func VerdictBlock(v Verdict) string {
	return "\n\n**Final Verdict**\n" + string(v)
}

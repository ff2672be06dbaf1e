package analysis

import (
	"fmt"

	"silicorex/translations"
)

// Benchmarks the narrative is asked to label against.
const (
	RainfallStrengthMM     = 700
	BoilersStrengthCount   = 40
	BoilersWeaknessCount   = 20
	RoadLengthStrengthKm   = 2000
	analysisRegion         = "Karnataka, India"
	translationPromptIntro = "Translate the following professional report accurately into formal %s. Retain all original Markdown formatting:\n\n---\n\n"
)

const analysisTemplate = `
**Role:** You are a senior semiconductor industry consultant.
**Analysis Location:** %s, %s
**Key Performance Indicators (KPIs) and Clear Benchmarks:**
- **Water Security (Total Annual Rainfall):** %s mm
    - *Benchmark:* > %dmm is a **Strength**.
- **Industrial Ecosystem (Working Boilers):** %s
    - *Benchmark:* > %d is a **Strength**. < %d is a **Weakness**.
- **Logistics Infrastructure (Total Road Length):** %s Kms
    - *Benchmark:* > %d Kms is a **Strength**.
**Task (Strict Instructions):**
1.  **Parameter Significance:** Briefly explain why water, the industrial ecosystem and logistics matter for a fab.
2.  **Data-Driven Analysis:** Analyze each KPI, stating its value and labeling it as a 'Strength' or 'Weakness' against its benchmark.
3.  **Synthesis & Conclusion:** Summarize the findings. **Do not write a final verdict yourself.**
Structure your response with clear, bold headings.
`

// CompilePrompt renders the analysis request for district. The verdict is
// derived afterwards, so the model is told not to give one.
func CompilePrompt(district string, m FeasibilityMetrics) string {
	return fmt.Sprintf(analysisTemplate,
		district, analysisRegion,
		m.TotalAnnualRainfall, RainfallStrengthMM,
		m.WorkingBoilers, BoilersStrengthCount, BoilersWeaknessCount,
		m.TotalRoadLength, RoadLengthStrengthKm,
	)
}

// CompileTranslationPrompt asks for report to be rendered in locale's
// language with its markup intact.
func CompileTranslationPrompt(report, locale string) string {
	language, ok := translations.Languages[locale]
	if !ok {
		language = translations.Languages[translations.DefaultLocale]
	}
	return fmt.Sprintf(translationPromptIntro, language) + report
}

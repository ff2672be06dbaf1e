// Package translations holds the user-facing strings and the district name
// localization table.
package translations

import "strings"

// Supported locales.
const (
	English = "en"
	Kannada = "kn"

	DefaultLocale = English
)

// Languages maps a locale to the language name used in translation prompts.
var Languages = map[string]string{
	English: "English",
	Kannada: "Kannada",
}

// Strings keyed by message, then locale.
var Strings = map[string]map[string]string{
	"report_title": {
		English: "Semiconductor Fab Site Feasibility Report",
		Kannada: "ಸೆಮಿಕಂಡಕ್ಟರ್ ಫ್ಯಾಬ್ ಸೈಟ್ ಕಾರ್ಯಸಾಧ್ಯತಾ ವರದಿ",
	},
	"report_header": {
		English: "Feasibility Report for {district}",
		Kannada: "{district} ಗಾಗಿ ಕಾರ್ಯಸಾಧ್ಯತಾ ವರದಿ",
	},
	"success_message": {
		English: "Report generated successfully.",
		Kannada: "ವರದಿಯನ್ನು ಯಶಸ್ವಿಯಾಗಿ ರಚಿಸಲಾಗಿದೆ.",
	},
	"error_message": {
		English: "Could not generate the report. Please check the error messages above.",
		Kannada: "ವರದಿಯನ್ನು ರಚಿಸಲು ಸಾಧ್ಯವಾಗಲಿಲ್ಲ. ದಯವಿಟ್ಟು ಮೇಲಿನ ದೋಷ ಸಂದೇಶಗಳನ್ನು ಪರಿಶೀಲಿಸಿ.",
	},
	"data_load_error": {
		English: "Application cannot start because one or more data files failed to load. Please check the 'data' directory.",
		Kannada: "ಒಂದು ಅಥವಾ ಹೆಚ್ಚು ಡೇಟಾ ಫೈಲ್‌ಗಳು ಲೋಡ್ ಆಗದ ಕಾರಣ ಅಪ್ಲಿಕೇಶನ್ ಪ್ರಾರಂಭಿಸಲು ಸಾಧ್ಯವಿಲ್ಲ. ದಯವಿಟ್ಟು 'data' ಡೈರೆಕ್ಟರಿಯನ್ನು ಪರಿಶೀಲಿಸಿ.",
	},
	"config_error": {
		English: "Please add your Google Gemini API key to the service configuration.",
		Kannada: "ದಯವಿಟ್ಟು ನಿಮ್ಮ ಗೂಗಲ್ ಜೆಮಿನಿ API ಕೀಯನ್ನು ಸೇವಾ ಸಂರಚನೆಗೆ ಸೇರಿಸಿ.",
	},
	"unknown_district": {
		English: "District {district} is not available for analysis.",
		Kannada: "{district} ಜಿಲ್ಲೆ ವಿಶ್ಲೇಷಣೆಗೆ ಲಭ್ಯವಿಲ್ಲ.",
	},
	"model_unavailable": {
		English: "The forecasting model is not available. Use the trend forecast instead.",
		Kannada: "ಮುನ್ಸೂಚನೆ ಮಾದರಿ ಲಭ್ಯವಿಲ್ಲ. ಬದಲಿಗೆ ಪ್ರವೃತ್ತಿ ಮುನ್ಸೂಚನೆಯನ್ನು ಬಳಸಿ.",
	},
	"backend_error": {
		English: "An error occurred while communicating with the Gemini API.",
		Kannada: "ಜೆಮಿನಿ API ಯೊಂದಿಗೆ ಸಂವಹನ ನಡೆಸುವಾಗ ದೋಷ ಸಂಭವಿಸಿದೆ.",
	},
}

// DistrictsENtoKN maps canonical district spellings to Kannada.
var DistrictsENtoKN = map[string]string{
	"Bagalkote":        "ಬಾಗಲಕೋಟೆ",
	"Bangalore Rural":  "ಬೆಂಗಳೂರು ಗ್ರಾಮಾಂತರ",
	"Bangalore Urban":  "ಬೆಂಗಳೂರು ನಗರ",
	"Belagavi":         "ಬೆಳಗಾವಿ",
	"Bellary":          "ಬಳ್ಳಾರಿ",
	"Bidar":            "ಬೀದರ್",
	"Chamarajanagar":   "ಚಾಮರಾಜನಗರ",
	"Chikkaballapur":   "ಚಿಕ್ಕಬಳ್ಳಾಪುರ",
	"Chikkamagaluru":   "ಚಿಕ್ಕಮಗಳೂರು",
	"Chitradurga":      "ಚಿತ್ರದುರ್ಗ",
	"Dakshina Kannada": "ದಕ್ಷಿಣ ಕನ್ನಡ",
	"Davanagere":       "ದಾವಣಗೆರೆ",
	"Dharwad":          "ಧಾರವಾಡ",
	"Gadag":            "ಗದಗ",
	"Hassan":           "ಹಾಸನ",
	"Haveri":           "ಹಾವೇರಿ",
	"Kalaburagi":       "ಕಲಬುರಗಿ",
	"Kodagu":           "ಕೊಡಗು",
	"Kolar":            "ಕೋಲಾರ",
	"Koppal":           "ಕೊಪ್ಪಳ",
	"Mandya":           "ಮಂಡ್ಯ",
	"Mysuru":           "ಮೈಸೂರು",
	"Raichur":          "ರಾಯಚೂರು",
	"Ramanagara":       "ರಾಮನಗರ",
	"Shivamogga":       "ಶಿವಮೊಗ್ಗ",
	"Tumakuru":         "ತುಮಕೂರು",
	"Udupi":            "ಉಡುಪಿ",
	"Uttara Kannada":   "ಉತ್ತರ ಕನ್ನಡ",
	"Vijayapura":       "ವಿಜಯಪುರ",
	"Yadgir":           "ಯಾದಗಿರಿ",
}

// Get returns the message for key in locale, falling back to English.
func Get(key, locale string) string {
	byLocale, ok := Strings[key]
	if !ok {
		return key
	}
	if s, ok := byLocale[locale]; ok {
		return s
	}
	return byLocale[DefaultLocale]
}

// Format substitutes {district} in a message.
func Format(key, locale, district string) string {
	return strings.ReplaceAll(Get(key, locale), "{district}", district)
}

// NormalizeLocale maps unknown or empty locales to the default.
func NormalizeLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if IsSupported(locale) {
		return locale
	}
	return DefaultLocale
}

// IsSupported reports whether locale has a translation.
func IsSupported(locale string) bool {
	_, ok := Languages[locale]
	return ok
}

// LocalizeDistrict returns the display name of a canonical district.
func LocalizeDistrict(district, locale string) string {
	if locale == Kannada {
		if kn, ok := DistrictsENtoKN[district]; ok {
			return kn
		}
	}
	return district
}

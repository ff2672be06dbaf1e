package analysis

import (
	"html"
	"strings"

	"silicorex/translations"
)

const reportStyle = `<style> @import url('https://fonts.googleapis.com/css2?family=Noto+Sans&family=Noto+Sans+Kannada&display=swap'); ` +
	`body { font-family: 'Noto Sans', sans-serif; margin: 40px; line-height: 1.6; color: #333; background-color: #f9f9f9; } ` +
	`.kannada { font-family: 'Noto Sans Kannada', sans-serif; } ` +
	`.container { max-width: 800px; margin: auto; border: 1px solid #ddd; padding: 30px 50px; box-shadow: 0 0 15px rgba(0,0,0,0.05); background-color: #ffffff; border-radius: 8px; } ` +
	`h1, h2 { text-align: center; color: #0A192F; border-bottom: 2px solid #00A8E8; padding-bottom: 10px; } ` +
	`h2 { font-size: 1.2em; border-bottom: none; color: #555; margin-top: -15px; font-style: italic; } ` +
	`strong { display: block; font-size: 1.2em; margin-top: 25px; margin-bottom: 10px; color: #0A192F; } ` +
	`br { content: ""; margin: 1em; display: block; } </style>`

const emphasisMarker = "**"

// RenderHTML converts a finished report into a self-contained HTML document.
// It is a pure function of its arguments.
//
// Emphasis markers are paired in encounter order; an odd count leaves the
// last <strong> unclosed.
func RenderHTML(reportText, locale, district string) string {
	locale = translations.NormalizeLocale(locale)
	title := html.EscapeString(translations.Get("report_title", locale))
	subtitle := html.EscapeString(translations.LocalizeDistrict(district, locale))

	bodyClass := ""
	if locale == translations.Kannada {
		bodyClass = "kannada"
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html lang="`)
	b.WriteString(locale)
	b.WriteString(`"><head><meta charset="UTF-8"><title>`)
	b.WriteString(title)
	b.WriteString(" - ")
	b.WriteString(subtitle)
	b.WriteString("</title>")
	b.WriteString(reportStyle)
	b.WriteString(`</head><body class="`)
	b.WriteString(bodyClass)
	b.WriteString(`"><div class="container"><h1>`)
	b.WriteString(title)
	b.WriteString("</h1><h2>- ")
	b.WriteString(subtitle)
	b.WriteString(" -</h2><br>")
	b.WriteString(renderBody(reportText))
	b.WriteString("</div></body></html>")
	return b.String()
}

func renderBody(text string) string {
	body := strings.ReplaceAll(html.EscapeString(text), "\n", "<br>")
	parts := strings.Split(body, emphasisMarker)

	var b strings.Builder
	b.Grow(len(body) + len(parts)*8)
	for i, part := range parts {
		if i > 0 {
			if i%2 == 1 {
				b.WriteString("<strong>")
			} else {
				b.WriteString("</strong>")
			}
		}
		b.WriteString(part)
	}
	return b.String()
}

// ReportFileName is the download name for district's report.
func ReportFileName(district string) string {
	return "Feasibility_Report_" + strings.ReplaceAll(district, " ", "_") + ".html"
}

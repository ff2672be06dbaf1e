package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"google.golang.org/api/iterator"

	"silicorex/analysis"
	"silicorex/middleware"
	"silicorex/models"
	"silicorex/translations"
)

// GenerationTimeout bounds one report, translation included.
const GenerationTimeout = 5 * time.Minute

// MIMEApplicationNDJSON is the content type of analysis streams.
const MIMEApplicationNDJSON = "application/x-ndjson"

// Pipeline returns the analysis pipeline over the memoized district tables.
// It is rebuilt only when the tables have been reloaded.
func (h *Handler) Pipeline() (*analysis.Pipeline, error) {
	tables, err := h.Data.Districts()
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.pipeline == nil || h.pipeline.Tables() != tables {
		h.pipeline = analysis.NewPipeline(tables, h.Backend)
	}
	return h.pipeline, nil
}

// sessionWithLang applies a language chosen in the request body.
func sessionWithLang(c *fiber.Ctx, lang string) models.Session {
	s, _ := middleware.SessionFrom(c)
	if lang != "" {
		s.Locale = translations.NormalizeLocale(lang)
		middleware.WithSession(c, s)
	}
	if s.Locale == "" {
		s.Locale = translations.DefaultLocale
	}
	return s
}

// prepare resolves the district of an analysis request and checks that a
// backend is available.
func (h *Handler) prepare(district, locale string) (*analysis.Pipeline, *analysis.Request, error) {
	p, err := h.Pipeline()
	if err != nil {
		return nil, nil, err
	}
	if !p.Configured() {
		return nil, nil, analysis.ErrConfiguration
	}
	req, err := p.Prepare(district, locale)
	if err != nil {
		return nil, nil, err
	}
	return p, req, nil
}

// HandleDistricts lists the districts available for analysis.
// GET /api/v1/site/districts?lang=
func (h *Handler) HandleDistricts(c *fiber.Ctx) error {
	s := sessionWithLang(c, c.Query("lang"))
	p, err := h.Pipeline()
	if err != nil {
		return domainError(c, err, s.Locale, "")
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"data": models.DistrictsResponse{
			Locale:    s.Locale,
			Districts: p.Resolver().AvailableDistricts(s.Locale),
		},
	})
}

// HandleAnalyze streams a feasibility report as newline-delimited JSON.
// POST /api/v1/site/analyze
func (h *Handler) HandleAnalyze(c *fiber.Ctx) error {
	var body models.AnalyzeRequest
	if err := c.BodyParser(&body); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	s := sessionWithLang(c, body.Lang)
	if body.District == "" {
		return errorResponse(c, fiber.StatusBadRequest, "district is required")
	}

	p, req, err := h.prepare(body.District, s.Locale)
	if err != nil {
		return domainError(c, err, s.Locale, body.District)
	}

	ctx, cancel := context.WithTimeout(context.Background(), GenerationTimeout)
	stream := p.Stream(ctx, req)

	c.Set(fiber.HeaderContentType, MIMEApplicationNDJSON)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer cancel()
		writeReportStream(w, stream, req, cancel)
	})
	return nil
}

// writeReportStream forwards stream events until the stream ends or the
// client goes away. A failed write cancels generation.
func writeReportStream(w *bufio.Writer, stream *analysis.ReportStream, req *analysis.Request, cancel context.CancelFunc) {
	enc := json.NewEncoder(w)
	emit := func(ev models.StreamEvent) bool {
		if err := enc.Encode(ev); err != nil {
			cancel()
			return false
		}
		if err := w.Flush(); err != nil {
			cancel()
			return false
		}
		return true
	}

	for {
		ev, err := stream.Next()
		if errors.Is(err, iterator.Done) {
			report, err := stream.Report()
			if err != nil {
				emit(models.StreamEvent{Type: models.StreamError, Message: err.Error()})
				return
			}
			emit(models.StreamEvent{
				Type:    models.StreamDone,
				Message: translations.Get("success_message", req.Locale),
				Report:  reportSummary(report),
				Metrics: req.Metrics,
			})
			return
		}
		if err != nil {
			_, message := statusFor(err, req.Locale, req.Display)
			emit(models.StreamEvent{Type: models.StreamError, Message: message})
			return
		}
		if !emit(models.StreamEvent{Type: ev.Kind.String(), Text: ev.Text}) {
			log.WithField("district", req.District).Info("client disconnected, generation cancelled")
			return
		}
	}
}

func reportSummary(r *analysis.Report) *models.ReportSummary {
	return &models.ReportSummary{
		ID:       r.ID,
		District: r.District,
		Locale:   r.Locale,
		Verdict:  string(r.Verdict),
		FileName: analysis.ReportFileName(r.District),
	}
}

// HandleReport generates a report and returns it as an HTML download.
// POST /api/v1/site/report
func (h *Handler) HandleReport(c *fiber.Ctx) error {
	var body models.AnalyzeRequest
	if err := c.BodyParser(&body); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	s := sessionWithLang(c, body.Lang)
	if body.District == "" {
		return errorResponse(c, fiber.StatusBadRequest, "district is required")
	}

	p, req, err := h.prepare(body.District, s.Locale)
	if err != nil {
		return domainError(c, err, s.Locale, body.District)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), GenerationTimeout)
	defer cancel()
	report, err := analysis.Collect(p.Stream(ctx, req))
	if err != nil {
		return domainError(c, err, s.Locale, body.District)
	}

	return sendReport(c, report.Text, report.Locale, report.District)
}

// HandleRender wraps supplied report text in the HTML report template.
// POST /api/v1/site/render
func (h *Handler) HandleRender(c *fiber.Ctx) error {
	var body models.RenderRequest
	if err := c.BodyParser(&body); err != nil {
		return errorResponse(c, fiber.StatusBadRequest, "Invalid request body")
	}
	s := sessionWithLang(c, body.Lang)
	if body.District == "" || body.Text == "" {
		return errorResponse(c, fiber.StatusBadRequest, "district and text are required")
	}

	p, err := h.Pipeline()
	if err != nil {
		return domainError(c, err, s.Locale, body.District)
	}
	district, err := p.Resolver().Resolve(body.District, s.Locale)
	if err != nil {
		return domainError(c, err, s.Locale, body.District)
	}
	return sendReport(c, body.Text, s.Locale, district)
}

func sendReport(c *fiber.Ctx, text, locale, district string) error {
	c.Attachment(analysis.ReportFileName(district))
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.SendString(analysis.RenderHTML(text, locale, district))
}

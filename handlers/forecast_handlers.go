package handlers

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"silicorex/datasets"
	"silicorex/forecast"
	"silicorex/middleware"
	"silicorex/models"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

// projectForecast runs the strategy named in the query and derives the
// profit and loss outlook.
func (h *Handler) projectForecast(c *fiber.Ctx) (*forecast.Projection, error) {
	var q models.ForecastQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, &requestError{msg: "Invalid query parameters"}
	}

	a := forecast.DefaultAssumptions()
	if q.InitialCapex != 0 {
		a.InitialCapex = q.InitialCapex
	}
	if q.CapacityWPM != 0 {
		a.CapacityWPM = q.CapacityWPM
	}
	if q.ChipsPerWafer != 0 {
		a.ChipsPerWafer = q.ChipsPerWafer
	}
	if q.Years != 0 {
		a.Years = q.Years
	}
	if err := a.Validate(); err != nil {
		return nil, &requestError{msg: err.Error()}
	}

	strategy, err := forecast.Select(q.Strategy, h.Models)
	if err != nil {
		return nil, &requestError{msg: err.Error()}
	}

	table, err := h.Data.Series()
	if err != nil {
		return nil, err
	}
	history, err := forecast.HistoryFromTable(table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", datasets.ErrDataUnavailable, err)
	}

	series, err := strategy.Project(c.UserContext(), history, a.Years)
	if err != nil {
		return nil, err
	}
	p := forecast.Derive(series, a)
	p.Strategy = strategy.Name()

	log.WithField("strategy", p.Strategy).
		WithField("years", a.Years).
		WithField("break_even_year", p.BreakEvenYear).
		Debug("forecast projected")
	return p, nil
}

func forecastError(c *fiber.Ctx, err error) error {
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		return errorResponse(c, fiber.StatusBadRequest, reqErr.msg)
	}
	s, _ := middleware.SessionFrom(c)
	return domainError(c, err, s.Locale, "")
}

// HandleForecast returns the projection as JSON.
// GET /api/v1/forecast?strategy=&capex=&capacity=&chips=&years=
func (h *Handler) HandleForecast(c *fiber.Ctx) error {
	p, err := h.projectForecast(c)
	if err != nil {
		return forecastError(c, err)
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   p,
		"summary": fiber.Map{
			"breakEvenYear": p.BreakEvenYear,
			"profitable":    p.Profitable,
			"netResult":     forecast.Round2(p.NetResult),
		},
	})
}

// HandleForecastXLSX returns the projection table as a spreadsheet.
// GET /api/v1/forecast/export.xlsx
func (h *Handler) HandleForecastXLSX(c *fiber.Ctx) error {
	p, err := h.projectForecast(c)
	if err != nil {
		return forecastError(c, err)
	}
	var buf bytes.Buffer
	if err := forecast.WriteXLSX(p, &buf); err != nil {
		log.WithError(err).Error("writing forecast spreadsheet")
		return errorResponse(c, fiber.StatusInternalServerError, "Could not build spreadsheet")
	}
	c.Attachment("forecast.xlsx")
	c.Set(fiber.HeaderContentType, mimeXLSX)
	return c.Send(buf.Bytes())
}

// HandleForecastChart returns the projection chart as a PNG image.
// GET /api/v1/forecast/chart.png
func (h *Handler) HandleForecastChart(c *fiber.Ctx) error {
	p, err := h.projectForecast(c)
	if err != nil {
		return forecastError(c, err)
	}
	var buf bytes.Buffer
	if err := forecast.WriteChartPNG(p, &buf); err != nil {
		log.WithError(err).Error("drawing forecast chart")
		return errorResponse(c, fiber.StatusInternalServerError, "Could not draw chart")
	}
	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(buf.Bytes())
}

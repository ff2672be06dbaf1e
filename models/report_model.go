package models

// ForecastQuery holds the forecast query string parameters.
type ForecastQuery struct {
	Strategy      string  `query:"strategy"`
	InitialCapex  float64 `query:"capex"`
	CapacityWPM   int     `query:"capacity"`
	ChipsPerWafer int     `query:"chips"`
	Years         int     `query:"years"`
}

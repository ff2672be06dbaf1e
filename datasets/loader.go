package datasets

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/sirupsen/logrus"
)

// Column names used by the three district sources after trimming.
const (
	RainfallDistrictColumn = "District"
	RainfallValueColumn    = "Avg_rainfall"
	BoilerDistrictColumn   = "DISTRICT"
	BoilerValueColumn      = "NO.OF WORKING BOILERS"
	RoadDistrictColumn     = "District"
	RoadValueColumn        = "Total in Kms"
)

// ErrDataUnavailable marks a dataset that could not be read. Dependent
// features must refuse to run until it is fixed.
var ErrDataUnavailable = errors.New("dataset unavailable")

// LoadError reports which source failed to load.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrDataUnavailable, e.Err}
}

// Paths locates the three district sources.
type Paths struct {
	Rainfall string
	Boilers  string
	Roads    string
}

// DistrictTables groups the district keyed sources.
type DistrictTables struct {
	Rainfall *Table
	Boilers  *Table
	Roads    *Table
}

// renamedDistrict matches the pre-2014 spelling of Mysuru in any case.
var renamedDistrict = regexp.MustCompile(`(?i)Mysore`)

const currentDistrictName = "Mysuru"

var log = logrus.WithField("component", "datasets")

// Load reads all three sources and reconciles district spellings. There is no
// partial result: the first unreadable source fails the load.
func Load(p Paths) (*DistrictTables, error) {
	rainfall, err := readSource(p.Rainfall)
	if err != nil {
		return nil, err
	}
	boilers, err := readSource(p.Boilers)
	if err != nil {
		return nil, err
	}
	roads, err := readSource(p.Roads)
	if err != nil {
		return nil, err
	}

	NormalizeDistricts(rainfall, RainfallDistrictColumn)
	NormalizeDistricts(boilers, BoilerDistrictColumn)
	NormalizeDistricts(roads, RoadDistrictColumn)

	log.WithFields(logrus.Fields{
		"rainfall_rows": rainfall.Len(),
		"boiler_rows":   boilers.Len(),
		"road_rows":     roads.Len(),
	}).Info("district datasets loaded")

	return &DistrictTables{Rainfall: rainfall, Boilers: boilers, Roads: roads}, nil
}

// LoadSeries reads the synthetic fab cost dataset.
func LoadSeries(path string) (*Table, error) {
	return readSource(path)
}

func readSource(path string) (*Table, error) {
	t, err := ReadCSV(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Error("dataset read failed")
		return nil, &LoadError{Path: path, Err: err}
	}
	return t, nil
}

// NormalizeDistricts rewrites the renamed district spelling in column. Tables
// without the column are left untouched.
func NormalizeDistricts(t *Table, column string) {
	c := t.Column(column)
	if c < 0 {
		return
	}
	for _, row := range t.Rows {
		if c < len(row) {
			row[c] = renamedDistrict.ReplaceAllString(row[c], currentDistrictName)
		}
	}
}

package analysis

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"silicorex/datasets"
)

func writeDistrictFixtures(t *testing.T) datasets.Paths {
	t.Helper()
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	return datasets.Paths{
		Rainfall: write("rain.csv", "District,Month,Avg_rainfall\nMysore,Jan,200.00\nMysore,Feb,400.10\nMYSORE,Mar,212.24\nUdupi,Jan,4000\n"),
		Boilers:  write("boilers.csv", " DISTRICT , NO.OF WORKING BOILERS \nMysore,45\nHassan,70\n"),
		Roads:    write("roads.csv", "District,Total in Kms\nMysore,2150\n"),
	}
}

func TestPipelineMysuruEndToEnd(t *testing.T) {
	tables, err := datasets.Load(writeDistrictFixtures(t))
	require.NoError(t, err)

	backend := &scriptedBackend{streams: [][]string{{
		"**Water Security**\nRainfall of 812.34 mm is a Strength.\n",
		"**Industrial Ecosystem**\n45 working boilers is a Strength.\n",
		"**Logistics**\n2150 Kms is a Strength.",
	}}}
	p := NewPipeline(tables, backend)

	// "MYSORE" and "Mysore" both normalize to Mysuru.
	assert.Equal(t, []string{"Mysuru", "Udupi"}, p.Resolver().AvailableDistricts("en"))

	req, err := p.Prepare("Mysuru", "en")
	require.NoError(t, err)
	assert.Equal(t, "Mysuru", req.District)
	assert.Equal(t, "812.34", req.Metrics.TotalAnnualRainfall.String())
	assert.Equal(t, "45", req.Metrics.WorkingBoilers.String())
	assert.Equal(t, "2150", req.Metrics.TotalRoadLength.String())

	report, err := Collect(p.Stream(context.Background(), req))
	require.NoError(t, err)
	assert.Equal(t, Suitable, report.Verdict)
	assert.True(t, strings.HasSuffix(report.Text, "**Final Verdict**\nSuitable"))
	assert.Contains(t, backend.prompts[0], "812.34 mm")

	doc := RenderHTML(report.Text, req.Locale, req.District)
	assert.Contains(t, doc, "<strong>Final Verdict</strong><br>Suitable")
}

func TestPipelineBoilerOnlyDistrict(t *testing.T) {
	tables, err := datasets.Load(writeDistrictFixtures(t))
	require.NoError(t, err)
	p := NewPipeline(tables, nil)

	assert.NotContains(t, p.Resolver().AvailableDistricts("en"), "Hassan")
	_, err = p.Prepare("Hassan", "en")
	assert.ErrorIs(t, err, ErrUnresolvable)
	assert.False(t, p.Configured())
}

func TestPipelineKannadaDisplay(t *testing.T) {
	tables, err := datasets.Load(writeDistrictFixtures(t))
	require.NoError(t, err)
	p := NewPipeline(tables, nil)

	req, err := p.Prepare("ಮೈಸೂರು", "kn")
	require.NoError(t, err)
	assert.Equal(t, "Mysuru", req.District)
	assert.Equal(t, "ಮೈಸೂರು", req.Display)
	assert.Equal(t, "kn", req.Locale)
}

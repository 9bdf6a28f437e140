package render

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/speedwagon-io/satalert/internal/model"
)

var sampleAlerts = []model.Alert{
	{
		SatelliteID: 1000,
		Severity:    model.SeverityRedHigh,
		Component:   "TSTAT",
		Timestamp:   time.Date(2018, 1, 1, 23, 1, 38, int(time.Millisecond), time.UTC),
	},
	{
		SatelliteID: 1000,
		Severity:    model.SeverityRedLow,
		Component:   "BATT",
		Timestamp:   time.Date(2018, 1, 1, 23, 1, 9, 521*int(time.Millisecond), time.UTC),
	},
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatJSON, sampleAlerts))

	require.JSONEq(t, `[
		{"satelliteId":1000,"severity":"RED HIGH","component":"TSTAT","timestamp":"2018-01-01T23:01:38.001Z"},
		{"satelliteId":1000,"severity":"RED LOW","component":"BATT","timestamp":"2018-01-01T23:01:09.521Z"}
	]`, buf.String())
	require.Contains(t, buf.String(), "\n  {", "output is indented")
}

func TestRenderJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, "", nil))
	require.Equal(t, "[]\n", buf.String())
}

func TestRenderYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatYAML, sampleAlerts))

	var decoded []map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	require.Equal(t, 1000, decoded[0]["satelliteId"])
	require.Equal(t, "RED HIGH", decoded[0]["severity"])
	require.Equal(t, "BATT", decoded[1]["component"])
}

func TestRenderXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, FormatXLSX, sampleAlerts))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(alertsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, xlsxHeader, rows[0])
	require.Equal(t, []string{"1000", "RED HIGH", "TSTAT", "2018-01-01T23:01:38.001Z"}, rows[1])
	require.Equal(t, "RED LOW", rows[2][1])
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	require.ErrorIs(t, Render(&buf, "csv", sampleAlerts), ErrUnknownFormat)
	require.Zero(t, buf.Len())
}

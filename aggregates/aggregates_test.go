package aggregates

import (
	"testing"

	"hrpulse/filters"
	"hrpulse/fixtures"
	"hrpulse/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrictionCountsAlwaysSumToTotal(t *testing.T) {
	set, err := fixtures.Load()
	require.NoError(t, err)

	departments := []string{filters.All, "dept-eng", "dept-sales", "dept-ops"}
	severities := []string{filters.All, "low", "medium", "high", "critical"}
	for _, dept := range departments {
		for _, sev := range severities {
			items := filters.Apply(set.Frictions,
				filters.Equal(dept, filters.All, func(f models.Friction) string { return f.Department }),
				filters.Equal(sev, filters.All, func(f models.Friction) string { return string(f.Severity) }),
			)
			s := Frictions(items)

			assert.Equal(t, len(items), s.Total)
			assert.Equal(t, s.Total, s.Resolved+s.Pending, "dept=%s severity=%s", dept, sev)
		}
	}
}

func TestFrictionSummaryFixture(t *testing.T) {
	s := Frictions(fixtures.MustLoad().Frictions)

	assert.Equal(t, 6, s.Total)
	assert.Equal(t, 3, s.Resolved)
	assert.Equal(t, 3, s.Pending)
	assert.Equal(t, map[string]int{"high": 2, "medium": 2, "critical": 1, "low": 1}, s.BySeverity)
	// (3.3 + 1.5 + 3.4) / 3
	assert.InDelta(t, 2.73, s.AvgSatisfactionGain, 0.001)
}

func TestEmptyCollections(t *testing.T) {
	assert.Equal(t, FrictionSummary{BySeverity: map[string]int{}}, Frictions(nil))
	assert.Equal(t, 0.0, Mean(nil))
	assert.Equal(t, 0.0, Median(nil))
	assert.Equal(t, 0, Heatmap(nil).Departments)
	assert.Equal(t, 0.0, Trends(nil).EngagementDelta)
}

func TestHeatmapSummary(t *testing.T) {
	s := Heatmap(fixtures.MustLoad().Heatmap)

	assert.Equal(t, 6, s.Departments)
	assert.Equal(t, "Operations", s.Lowest)
	assert.Len(t, s.DimensionAverages, 6)
	// (7.8 + 6.5 + 7.1 + 8.2 + 6.9 + 5.7) / 6
	assert.InDelta(t, 7.03, s.DimensionAverages["leadership"], 0.001)
}

func TestAlertsAndMetrics(t *testing.T) {
	set := fixtures.MustLoad()

	alerts := Alerts(set.Alerts)
	assert.Equal(t, 5, alerts.Total)
	assert.Equal(t, 2, alerts.Critical)

	metrics := Metrics(set.Metrics)
	assert.Equal(t, 6, metrics.Total)
	assert.Equal(t, 4, metrics.OffTrack)
}

func TestTrendSummary(t *testing.T) {
	s := Trends(fixtures.MustLoad().Trends)

	assert.Equal(t, 12, s.Points)
	assert.InDelta(t, 0.6, s.EngagementDelta, 0.001)
}

func TestLibraryAndCases(t *testing.T) {
	set := fixtures.MustLoad()

	lib := Library(set.ActionTemplates)
	assert.Equal(t, 5, lib.Total)
	assert.Equal(t, 2500.0, lib.MedianCost)
	assert.InDelta(t, 0.73, lib.AvgSuccessRate, 0.001)

	cases := Cases(set.Cases)
	assert.Equal(t, 5, cases.Total)
	assert.Equal(t, 4, cases.Active)
	assert.Equal(t, 2, cases.ByRisk["high"])
}

func TestCountBy(t *testing.T) {
	got := CountBy([]string{"a", "b", "a"}, func(s string) string { return s })
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, got)
	assert.Equal(t, 1.24, Round(1.2351, 2))
}

// Package aggregates computes the summary figures shown next to section lists. Every
// function is a single pass over the already filtered collection.
package aggregates

import (
	"math"

	"hrpulse/models"

	"github.com/montanaflynn/stats"
)

// CountBy counts items per key.
func CountBy[T any](items []T, key func(T) string) map[string]int {
	counts := make(map[string]int)
	for _, item := range items {
		counts[key(item)]++
	}
	return counts
}

// Mean is stats.Mean with 0 for an empty input.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return 0
	}
	return Round(mean, 2)
}

// Median is stats.Median with 0 for an empty input.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	median, err := stats.Median(values)
	if err != nil {
		return 0
	}
	return Round(median, 2)
}

func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func pluck[T any](items []T, value func(T) float64) []float64 {
	out := make([]float64, 0, len(items))
	for _, item := range items {
		out = append(out, value(item))
	}
	return out
}

type MetricSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	OffTrack int            `json:"off_track"`
}

func Metrics(items []models.MetricSnapshot) MetricSummary {
	byStatus := CountBy(items, func(m models.MetricSnapshot) string { return string(m.Status) })
	return MetricSummary{
		Total:    len(items),
		ByStatus: byStatus,
		OffTrack: len(items) - byStatus[string(models.MetricOnTrack)],
	}
}

type TrendSummary struct {
	Points          int     `json:"points"`
	AvgEngagement   float64 `json:"avg_engagement"`
	AvgTurnover     float64 `json:"avg_turnover"`
	AvgSatisfaction float64 `json:"avg_satisfaction"`
	// EngagementDelta is last minus first point of the series.
	EngagementDelta float64 `json:"engagement_delta"`
}

func Trends(points []models.TrendPoint) TrendSummary {
	s := TrendSummary{
		Points:          len(points),
		AvgEngagement:   Mean(pluck(points, func(p models.TrendPoint) float64 { return p.Engagement })),
		AvgTurnover:     Mean(pluck(points, func(p models.TrendPoint) float64 { return p.Turnover })),
		AvgSatisfaction: Mean(pluck(points, func(p models.TrendPoint) float64 { return p.Satisfaction })),
	}
	if len(points) > 1 {
		s.EngagementDelta = Round(points[len(points)-1].Engagement-points[0].Engagement, 2)
	}
	return s
}

type HeatmapSummary struct {
	Departments       int                `json:"departments"`
	DimensionAverages map[string]float64 `json:"dimension_averages"`
	Overall           float64            `json:"overall"`
	// Lowest names the department with the lowest average score.
	Lowest string `json:"lowest,omitempty"`
}

func Heatmap(rows []models.DepartmentHeatmapRow) HeatmapSummary {
	s := HeatmapSummary{Departments: len(rows), DimensionAverages: make(map[string]float64, len(models.HeatmapDimensions))}
	if len(rows) == 0 {
		return s
	}

	columns := make([][]float64, len(models.HeatmapDimensions))
	var all []float64
	lowest := math.Inf(1)
	for _, r := range rows {
		scores := r.Scores()
		for i, v := range scores {
			columns[i] = append(columns[i], v)
		}
		all = append(all, scores...)
		if avg := Mean(scores); avg < lowest {
			lowest = avg
			s.Lowest = r.Name
		}
	}
	for i, name := range models.HeatmapDimensions {
		s.DimensionAverages[name] = Mean(columns[i])
	}
	s.Overall = Mean(all)
	return s
}

type AlertSummary struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	Critical   int            `json:"critical"`
}

func Alerts(items []models.Alert) AlertSummary {
	bySeverity := CountBy(items, func(a models.Alert) string { return string(a.Severity) })
	return AlertSummary{Total: len(items), BySeverity: bySeverity, Critical: bySeverity[string(models.SeverityCritical)]}
}

type JourneySummary struct {
	Total     int            `json:"total"`
	ByType    map[string]int `json:"by_type"`
	AvgImpact float64        `json:"avg_impact"`
}

func Journey(events []models.JourneyEvent) JourneySummary {
	return JourneySummary{
		Total:     len(events),
		ByType:    CountBy(events, func(e models.JourneyEvent) string { return string(e.Type) }),
		AvgImpact: Mean(pluck(events, func(e models.JourneyEvent) float64 { return e.ImpactScore })),
	}
}

// FrictionSummary splits frictions into resolved and pending; the two always add up to Total.
type FrictionSummary struct {
	Total               int            `json:"total"`
	Resolved            int            `json:"resolved"`
	Pending             int            `json:"pending"`
	BySeverity          map[string]int `json:"by_severity"`
	AvgSatisfactionGain float64        `json:"avg_satisfaction_gain"`
}

func Frictions(items []models.Friction) FrictionSummary {
	s := FrictionSummary{Total: len(items), BySeverity: make(map[string]int)}
	var gains []float64
	for _, f := range items {
		s.BySeverity[string(f.Severity)]++
		if f.Resolved() {
			s.Resolved++
			gains = append(gains, f.SatisfactionAfter-f.SatisfactionBefore)
		} else {
			s.Pending++
		}
	}
	s.AvgSatisfactionGain = Mean(gains)
	return s
}

type MilestoneSummary struct {
	Total     int            `json:"total"`
	ByStatus  map[string]int `json:"by_status"`
	AvgImpact float64        `json:"avg_impact"`
}

func Milestones(items []models.Milestone) MilestoneSummary {
	return MilestoneSummary{
		Total:     len(items),
		ByStatus:  CountBy(items, func(m models.Milestone) string { return string(m.Status) }),
		AvgImpact: Mean(pluck(items, func(m models.Milestone) float64 { return m.EngagementImpact })),
	}
}

type ReportCatalogSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
}

func Reports(items []models.ReportSummary) ReportCatalogSummary {
	return ReportCatalogSummary{
		Total:    len(items),
		ByStatus: CountBy(items, func(r models.ReportSummary) string { return string(r.Status) }),
	}
}

type LibrarySummary struct {
	Total          int            `json:"total"`
	ByCategory     map[string]int `json:"by_category"`
	AvgSuccessRate float64        `json:"avg_success_rate"`
	MedianCost     float64        `json:"median_cost"`
}

func Library(items []models.ActionTemplate) LibrarySummary {
	return LibrarySummary{
		Total:          len(items),
		ByCategory:     CountBy(items, func(a models.ActionTemplate) string { return string(a.Category) }),
		AvgSuccessRate: Mean(pluck(items, func(a models.ActionTemplate) float64 { return a.SuccessRate })),
		MedianCost:     Median(pluck(items, func(a models.ActionTemplate) float64 { return a.AverageCost })),
	}
}

type CaseSummary struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"by_status"`
	ByRisk   map[string]int `json:"by_risk"`
	Active   int            `json:"active"`
}

func Cases(items []models.RetentionCase) CaseSummary {
	byStatus := CountBy(items, func(c models.RetentionCase) string { return string(c.Status) })
	return CaseSummary{
		Total:    len(items),
		ByStatus: byStatus,
		ByRisk:   CountBy(items, func(c models.RetentionCase) string { return string(c.Risk) }),
		Active:   len(items) - byStatus[string(models.CaseClosed)],
	}
}

package dashboard

import (
	"context"
	"fmt"
	"time"

	"hrpulse/aggregates"
	"hrpulse/filters"
	"hrpulse/models"
	"hrpulse/notify"
	repository "hrpulse/repositories"
)

// Section names.
const (
	SectionMetrics    = "metrics"
	SectionTrends     = "trends"
	SectionHeatmap    = "heatmap"
	SectionAlerts     = "alerts"
	SectionTimeline   = "timeline"
	SectionFrictions  = "frictions"
	SectionMilestones = "milestones"
	SectionReports    = "reports"
	SectionLibrary    = "library"
	SectionCases      = "cases"
)

// StatusPending selects every friction that is not resolved yet.
const StatusPending = "pending"

// Departments lists the department ids used across the fixture collections.
var Departments = []string{"dept-eng", "dept-sales", "dept-mkt", "dept-hr", "dept-fin", "dept-ops"}

func strs[S ~string](values ...S) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// factory builds a section for a view.
type factory func(deps Deps, viewID string, employee func() string) Section

func register[T any](def Definition[T]) factory {
	return func(deps Deps, viewID string, employee func() string) Section {
		return newSection(def, deps, viewID, employee)
	}
}

var catalog = map[string]factory{
	SectionMetrics:    register(metricsSection),
	SectionTrends:     register(trendsSection),
	SectionHeatmap:    register(heatmapSection),
	SectionAlerts:     register(alertsSection),
	SectionTimeline:   register(timelineSection),
	SectionFrictions:  register(frictionsSection),
	SectionMilestones: register(milestonesSection),
	SectionReports:    register(reportsSection),
	SectionLibrary:    register(librarySection),
	SectionCases:      register(casesSection),
}

// Known reports whether name is a catalog section.
func Known(name string) bool {
	_, ok := catalog[name]
	return ok
}

var metricsSection = Definition[models.MetricSnapshot]{
	Name: SectionMetrics,
	Fields: []filters.Field{
		filters.Enum("status", strs(models.MetricOnTrack, models.MetricAttention, models.MetricCritical)...),
		filters.Search("search"),
	},
	Timeout:        5 * time.Second,
	FailureMessage: "Could not load the engagement metrics.",
	TimeoutMessage: "The engagement metrics took too long to load.",
	Fetch: func(ctx context.Context, repo repository.DashboardRepository, _ string) ([]models.MetricSnapshot, error) {
		return repo.ListMetrics(ctx)
	},
	Predicates: func(v filters.Values, _ time.Time) []filters.Predicate[models.MetricSnapshot] {
		return []filters.Predicate[models.MetricSnapshot]{
			filters.Equal(v["status"], filters.All, func(m models.MetricSnapshot) string { return string(m.Status) }),
			filters.Contains(v["search"], func(m models.MetricSnapshot) []string { return []string{m.Name, m.Description} }),
		}
	},
	Summarize: func(items []models.MetricSnapshot) interface{} { return aggregates.Metrics(items) },
}

var trendsSection = Definition[models.TrendPoint]{
	Name:           SectionTrends,
	Fields:         []filters.Field{filters.PeriodField("period", filters.Last12Months)},
	Timeout:        8 * time.Second,
	FailureMessage: "Could not load the trend series.",
	TimeoutMessage: "The trend series took too long to load.",
	Fetch: func(ctx context.Context, repo repository.DashboardRepository, _ string) ([]models.TrendPoint, error) {
		return repo.ListTrend(ctx)
	},
	Predicates: func(v filters.Values, ref time.Time) []filters.Predicate[models.TrendPoint] {
		return []filters.Predicate[models.TrendPoint]{
			// A month counts when its first day falls inside the window.
			filters.Within(v["period"], ref, models.TrendPoint.Month),
		}
	},
	Less:      func(a, b models.TrendPoint) bool { return a.Period < b.Period },
	Summarize: func(items []models.TrendPoint) interface{} { return aggregates.Trends(items) },
}

var heatmapSection = Definition[models.DepartmentHeatmapRow]{
	Name:           SectionHeatmap,
	Fields:         []filters.Field{filters.Enum("department", Departments...)},
	Timeout:        8 * time.Second,
	FailureMessage: "Could not load the department heatmap.",
	TimeoutMessage: "The department heatmap took too long to load.",
	Fetch: func(ctx context.Context, repo repository.DashboardRepository, _ string) ([]models.DepartmentHeatmapRow, error) {
		return repo.ListHeatmap(ctx)
	},
	Predicates: func(v filters.Values, _ time.Time) []filters.Predicate[models.DepartmentHeatmapRow] {
		return []filters.Predicate[models.DepartmentHeatmapRow]{
			filters.Equal(v["department"], filters.All, func(r models.DepartmentHeatmapRow) string { return r.ID }),
		}
	},
	Summarize: func(items []models.DepartmentHeatmapRow) interface{} { return aggregates.Heatmap(items) },
}

var alertsSection = Definition[models.Alert]{
	Name: SectionAlerts,
	Fields: []filters.Field{
		filters.Enum("severity", strs(models.Severities...)...),
		filters.Enum("type", strs(models.AlertTurnoverRisk, models.AlertEngagementDrop, models.AlertAbsenteeism, models.AlertBurnout)...),
		filters.Enum("department", Departments...),
	},
	Timeout:        5 * time.Second,
	FailureMessage: "Could not load the alerts.",
	TimeoutMessage: "The alerts took too long to load.",
	Fetch: func(ctx context.Context, repo repository.DashboardRepository, _ string) ([]models.Alert, error) {
		return repo.ListAlerts(ctx)
	},
	Predicates: func(v filters.Values, _ time.Time) []filters.Predicate[models.Alert] {
		return []filters.Predicate[models.Alert]{
			filters.Equal(v["severity"], filters.All, func(a models.Alert) string { return string(a.Severity) }),
			filters.Equal(v["type"], filters.All, func(a models.Alert) string { return string(a.Type) }),
			filters.Equal(v["department"], filters.All, func(a models.Alert) string { return a.Department }),
		}
	},
	Less:      func(a, b models.Alert) bool { return a.CreatedAt.After(b.CreatedAt) },
	Summarize: func(items []models.Alert) interface{} { return aggregates.Alerts(items) },
	Toast: func(items []models.Alert) *notify.Notification {
		critical := aggregates.Alerts(items).Critical
		if critical == 0 {
			return nil
		}
		return &notify.Notification{
			Level:   notify.LevelCritical,
			Title:   fmt.Sprintf("%d critical alert(s)", critical),
			Message: "Critical alerts need immediate attention.",
		}
	},
}

var timelineSection = Definition[models.JourneyEvent]{
	Name: SectionTimeline,
	Fields: []filters.Field{
		filters.Enum("type", strs(models.EventHiring, models.EventOnboarding, models.EventTraining,
			models.EventPromotion, models.EventTransfer, models.EventFeedback, models.EventLeave)...),
		filters.PeriodField("period", filters.Last12Months),
		filters.Search("search"),
	},
	Scoped:         true,
	Timeout:        10 * time.Second,
	FailureMessage: "Could not load the journey timeline.",
	TimeoutMessage: "The journey timeline took too long to load.",
	Fetch: func(ctx context.Context, repo repository.DashboardRepository, employeeID string) ([]models.JourneyEvent, error) {
		return repo.ListJourneyEvents(ctx, employeeID)
	},
	Predicates: func(v filters.Values, ref time.Time) []filters.Predicate[models.JourneyEvent] {
		return []filters.Predicate[models.JourneyEvent]{
			filters.Equal(v["type"], filters.All, func(e models.JourneyEvent) string { return string(e.Type) }),
			filters.Within(v["period"], ref, func(e models.JourneyEvent) time.Time { return e.Date }),
			filters.Contains(v["search"], func(e models.JourneyEvent) []string {
				return []string{e.Title, e.Description, e.Manager}
			}),
		}
	},
	Less:      func(a, b models.JourneyEvent) bool { return a.Date.After(b.Date) },
	Summarize: func(items []models.JourneyEvent) interface{} { return aggregates.Journey(items) },
}

func frictionStatus(status string) filters.Predicate[models.Friction] {
	switch status {
	case filters.All:
		return nil
	case StatusPending:
		return func(f models.Friction) bool { return !f.Resolved() }
	}
	return func(f models.Friction) bool { return string(f.Status) == status }
}

var frictionsSection = Definition[models.Friction]{
	Name: SectionFrictions,
	Fields: []filters.Field{
		filters.Enum("severity", strs(models.Severities...)...),
		filters.Enum("status", append(strs(models.FrictionOpen, models.FrictionInProgress, models.FrictionResolved), StatusPending)...),
		filters.Enum("department", Departments...),
		filters.Search("search"),
	},
	Scoped:         true,
	Timeout:        10 * time.Second,
	FailureMessage: "Could not load the friction points.",
	TimeoutMessage: "The friction points took too long to load.",
	Fetch: func(ctx context.Context, repo repository.DashboardRepository, employeeID string) ([]models.Friction, error) {
		return repo.ListFrictions(ctx, employeeID)
	},
	Predicates: func(v filters.Values, _ time.Time) []filters.Predicate[models.Friction] {
		return []filters.Predicate[models.Friction]{
			filters.Equal(v["severity"], filters.All, func(f models.Friction) string { return string(f.Severity) }),
			frictionStatus(v["status"]),
			filters.Equal(v["department"], filters.All, func(f models.Friction) string { return f.Department }),
			filters.Contains(v["search"], func(f models.Friction) []string { return []string{f.Title, f.Description} }),
		}
	},
	Less:      func(a, b models.Friction) bool { return a.ReportedAt.After(b.ReportedAt) },
	Summarize: func(items []models.Friction) interface{} { return aggregates.Frictions(items) },
	Toast: func(items []models.Friction) *notify.Notification {
		urgent := 0
		for _, f := range items {
			if !f.Resolved() && (f.Severity == models.SeverityHigh || f.Severity == models.SeverityCritical) {
				urgent++
			}
		}
		if urgent == 0 {
			return nil
		}
		return &notify.Notification{
			Level:   notify.LevelWarning,
			Title:   fmt.Sprintf("%d unresolved high-severity friction(s)", urgent),
			Message: "Review the open friction points for this employee.",
		}
	},
}

var milestonesSection = Definition[models.Milestone]{
	Name: SectionMilestones,
	Fields: []filters.Field{
		filters.Enum("status", strs(models.MilestoneAchieved, models.MilestonePending, models.MilestoneMissed)...),
		filters.Enum("category", strs(models.CategoryCareer, models.CategoryDevelopment, models.CategoryRecognition, models.CategoryTenure)...),
	},
	Scoped:         true,
	Timeout:        8 * time.Second,
	FailureMessage: "Could not load the milestones.",
	TimeoutMessage: "The milestones took too long to load.",
	Fetch: func(ctx context.Context, repo repository.DashboardRepository, employeeID string) ([]models.Milestone, error) {
		return repo.ListMilestones(ctx, employeeID)
	},
	Predicates: func(v filters.Values, _ time.Time) []filters.Predicate[models.Milestone] {
		return []filters.Predicate[models.Milestone]{
			filters.Equal(v["status"], filters.All, func(m models.Milestone) string { return string(m.Status) }),
			filters.Equal(v["category"], filters.All, func(m models.Milestone) string { return string(m.Category) }),
		}
	},
	Less:      func(a, b models.Milestone) bool { return a.Date().After(b.Date()) },
	Summarize: func(items []models.Milestone) interface{} { return aggregates.Milestones(items) },
}

var reportsSection = Definition[models.ReportSummary]{
	Name: SectionReports,
	Fields: []filters.Field{
		filters.Enum("type", strs(models.ReportTypes...)...),
		filters.Enum("status", strs(models.ReportReady, models.ReportProcessing, models.ReportFailed)...),
	},
	Timeout:        5 * time.Second,
	FailureMessage: "Could not load the report catalog.",
	TimeoutMessage: "The report catalog took too long to load.",
	Fetch: func(ctx context.Context, repo repository.DashboardRepository, _ string) ([]models.ReportSummary, error) {
		return repo.ListReports(ctx)
	},
	Predicates: func(v filters.Values, _ time.Time) []filters.Predicate[models.ReportSummary] {
		return []filters.Predicate[models.ReportSummary]{
			filters.Equal(v["type"], filters.All, func(r models.ReportSummary) string { return string(r.Type) }),
			filters.Equal(v["status"], filters.All, func(r models.ReportSummary) string { return string(r.Status) }),
		}
	},
	Less:      func(a, b models.ReportSummary) bool { return a.GeneratedAt.After(b.GeneratedAt) },
	Summarize: func(items []models.ReportSummary) interface{} { return aggregates.Reports(items) },
}

var librarySection = Definition[models.ActionTemplate]{
	Name: SectionLibrary,
	Fields: []filters.Field{
		filters.Enum("category", strs(models.ActionDevelopment, models.ActionRecognition, models.ActionCompensation,
			models.ActionWellbeing, models.ActionLeadership)...),
		filters.Search("search"),
	},
	Timeout:        8 * time.Second,
	FailureMessage: "Could not load the action library.",
	TimeoutMessage: "The action library took too long to load.",
	Fetch: func(ctx context.Context, repo repository.DashboardRepository, _ string) ([]models.ActionTemplate, error) {
		return repo.ListActionTemplates(ctx)
	},
	Predicates: func(v filters.Values, _ time.Time) []filters.Predicate[models.ActionTemplate] {
		return []filters.Predicate[models.ActionTemplate]{
			filters.Equal(v["category"], filters.All, func(a models.ActionTemplate) string { return string(a.Category) }),
			filters.Contains(v["search"], func(a models.ActionTemplate) []string {
				return []string{a.Name, a.Description, a.Subcategory}
			}),
		}
	},
	Less:      func(a, b models.ActionTemplate) bool { return a.SuccessRate > b.SuccessRate },
	Summarize: func(items []models.ActionTemplate) interface{} { return aggregates.Library(items) },
}

var casesSection = Definition[models.RetentionCase]{
	Name: SectionCases,
	Fields: []filters.Field{
		filters.Enum("status", strs(models.CaseOpen, models.CaseInProgress, models.CaseClosed)...),
		filters.Enum("risk", strs(models.RiskLow, models.RiskMedium, models.RiskHigh)...),
		filters.Enum("department", Departments...),
		filters.Search("search"),
	},
	Timeout:        10 * time.Second,
	FailureMessage: "Could not load the retention cases.",
	TimeoutMessage: "The retention cases took too long to load.",
	Fetch: func(ctx context.Context, repo repository.DashboardRepository, _ string) ([]models.RetentionCase, error) {
		return repo.ListCases(ctx)
	},
	Predicates: func(v filters.Values, _ time.Time) []filters.Predicate[models.RetentionCase] {
		return []filters.Predicate[models.RetentionCase]{
			filters.Equal(v["status"], filters.All, func(c models.RetentionCase) string { return string(c.Status) }),
			filters.Equal(v["risk"], filters.All, func(c models.RetentionCase) string { return string(c.Risk) }),
			filters.Equal(v["department"], filters.All, func(c models.RetentionCase) string { return c.Department }),
			filters.Contains(v["search"], func(c models.RetentionCase) []string {
				return []string{c.EmployeeName, c.Owner, c.Notes}
			}),
		}
	},
	Less:      func(a, b models.RetentionCase) bool { return a.OpenedAt.After(b.OpenedAt) },
	Summarize: func(items []models.RetentionCase) interface{} { return aggregates.Cases(items) },
}

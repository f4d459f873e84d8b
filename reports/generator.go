// Package reports builds downloadable xlsx workbooks from the dashboard collections.
package reports

import (
	"context"
	"fmt"
	"time"

	"hrpulse/aggregates"
	"hrpulse/apperrors"
	"hrpulse/models"
	repository "hrpulse/repositories"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	SummarySheet = "Summary"
	Format       = "xlsx"
	ContentType  = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Result is a generated workbook.
type Result struct {
	Summary  models.ReportSummary
	Filename string
	Content  []byte
}

type sheet struct {
	name    string
	headers []string
	rows    [][]interface{}
	// highlight is a one-line figure for the summary sheet.
	highlight string
}

type sheetBuilder func(ctx context.Context, repo repository.DashboardRepository, employeeID string) (sheet, error)

var layouts = map[models.ReportType][]sheetBuilder{
	models.ReportEngagement: {metricsSheet, trendSheet, heatmapSheet, alertsSheet},
	models.ReportTurnover:   {trendSheet, turnoverAlertsSheet, casesSheet},
	models.ReportJourney:    {journeySheet, frictionsSheet, milestonesSheet},
	models.ReportRetention:  {librarySheet, casesSheet},
}

var titles = map[models.ReportType]string{
	models.ReportEngagement: "Engagement overview",
	models.ReportTurnover:   "Turnover analysis",
	models.ReportJourney:    "Employee journey",
	models.ReportRetention:  "Retention plans",
}

type Generator struct {
	repo   repository.DashboardRepository
	now    func() time.Time
	logger *zap.Logger
}

func NewGenerator(repo repository.DashboardRepository, now func() time.Time, logger *zap.Logger) *Generator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{repo: repo, now: now, logger: logger}
}

// ParseType validates a report type name.
func ParseType(raw string) (models.ReportType, error) {
	t := models.ReportType(raw)
	if _, ok := layouts[t]; !ok {
		return "", apperrors.InvalidInput(fmt.Sprintf("unknown report type %q", raw))
	}
	return t, nil
}

// Build fetches the collections of the report concurrently and writes the workbook.
// employeeID scopes the journey report; the other reports ignore it.
func (g *Generator) Build(ctx context.Context, kind models.ReportType, employeeID string) (*Result, error) {
	builders, ok := layouts[kind]
	if !ok {
		return nil, apperrors.InvalidInput(fmt.Sprintf("unknown report type %q", kind))
	}

	sheets := make([]sheet, len(builders))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, build := range builders {
		eg.Go(func() error {
			s, err := build(egCtx, g.repo, employeeID)
			if err != nil {
				return err
			}
			sheets[i] = s
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, apperrors.ReportFailed(string(kind), err)
	}

	now := g.now()
	summary := models.ReportSummary{
		ID:          uuid.NewString(),
		Title:       titles[kind],
		Type:        kind,
		Period:      now.Format(models.PeriodLayout),
		GeneratedAt: now,
		Status:      models.ReportReady,
		Format:      Format,
	}
	for _, s := range sheets {
		summary.Rows += len(s.rows)
		if s.highlight != "" {
			summary.Highlights = append(summary.Highlights, s.highlight)
		}
	}

	content, err := write(summary, employeeID, sheets)
	if err != nil {
		return nil, apperrors.ReportFailed(string(kind), err)
	}

	g.logger.Info("report generated",
		zap.String("type", string(kind)),
		zap.Int("sheets", len(sheets)),
		zap.Int("rows", summary.Rows),
		zap.Int("bytes", len(content)))

	return &Result{
		Summary:  summary,
		Filename: fmt.Sprintf("%s-report-%s.%s", kind, now.Format(time.DateOnly), Format),
		Content:  content,
	}, nil
}

func write(summary models.ReportSummary, employeeID string, sheets []sheet) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	// The default first sheet becomes the summary.
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	info := [][]interface{}{
		{"Report", summary.Title},
		{"Type", string(summary.Type)},
		{"Period", summary.Period},
		{"Generated at", summary.GeneratedAt.Format(time.RFC3339)},
		{"Rows", summary.Rows},
	}
	if employeeID != "" {
		info = append(info, []interface{}{"Employee", employeeID})
	}
	for _, h := range summary.Highlights {
		info = append(info, []interface{}{"Highlight", h})
	}
	if err := writeRows(f, SummarySheet, info); err != nil {
		return nil, err
	}

	for _, s := range sheets {
		if _, err := f.NewSheet(s.name); err != nil {
			return nil, err
		}
		header := make([]interface{}, len(s.headers))
		for i, h := range s.headers {
			header[i] = h
		}
		if err := writeRows(f, s.name, append([][]interface{}{header}, s.rows...)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheetName string, rows [][]interface{}) error {
	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func metricsSheet(ctx context.Context, repo repository.DashboardRepository, _ string) (sheet, error) {
	items, err := repo.ListMetrics(ctx)
	if err != nil {
		return sheet{}, err
	}
	s := sheet{
		name:      "Metrics",
		headers:   []string{"ID", "Name", "Current", "Previous", "Target", "Unit", "Trend", "Status"},
		highlight: fmt.Sprintf("%d of %d metrics off track", aggregates.Metrics(items).OffTrack, len(items)),
	}
	for _, m := range items {
		s.rows = append(s.rows, []interface{}{m.ID, m.Name, m.CurrentValue, m.PreviousValue, m.Target, m.Unit, string(m.Trend), string(m.Status)})
	}
	return s, nil
}

func trendSheet(ctx context.Context, repo repository.DashboardRepository, _ string) (sheet, error) {
	items, err := repo.ListTrend(ctx)
	if err != nil {
		return sheet{}, err
	}
	sum := aggregates.Trends(items)
	s := sheet{
		name:      "Trend",
		headers:   []string{"Period", "Engagement", "Turnover", "Satisfaction"},
		highlight: fmt.Sprintf("Engagement moved %+.2f over %d periods", sum.EngagementDelta, sum.Points),
	}
	for _, p := range items {
		s.rows = append(s.rows, []interface{}{p.Period, p.Engagement, p.Turnover, p.Satisfaction})
	}
	return s, nil
}

func heatmapSheet(ctx context.Context, repo repository.DashboardRepository, _ string) (sheet, error) {
	items, err := repo.ListHeatmap(ctx)
	if err != nil {
		return sheet{}, err
	}
	s := sheet{
		name:    "Heatmap",
		headers: append([]string{"ID", "Department"}, models.HeatmapDimensions...),
	}
	if sum := aggregates.Heatmap(items); sum.Lowest != "" {
		s.highlight = fmt.Sprintf("Lowest scoring department: %s", sum.Lowest)
	}
	for _, r := range items {
		row := []interface{}{r.ID, r.Name}
		for _, v := range r.Scores() {
			row = append(row, v)
		}
		s.rows = append(s.rows, row)
	}
	return s, nil
}

func alertRows(items []models.Alert) [][]interface{} {
	rows := make([][]interface{}, 0, len(items))
	for _, a := range items {
		rows = append(rows, []interface{}{a.ID, string(a.Type), string(a.Severity), a.Title, a.Department,
			a.CurrentValue, a.Threshold, a.CreatedAt.Format(time.RFC3339)})
	}
	return rows
}

var alertHeaders = []string{"ID", "Type", "Severity", "Title", "Department", "Current", "Threshold", "Created at"}

func alertsSheet(ctx context.Context, repo repository.DashboardRepository, _ string) (sheet, error) {
	items, err := repo.ListAlerts(ctx)
	if err != nil {
		return sheet{}, err
	}
	return sheet{
		name:      "Alerts",
		headers:   alertHeaders,
		rows:      alertRows(items),
		highlight: fmt.Sprintf("%d critical alerts", aggregates.Alerts(items).Critical),
	}, nil
}

func turnoverAlertsSheet(ctx context.Context, repo repository.DashboardRepository, _ string) (sheet, error) {
	items, err := repo.ListAlerts(ctx)
	if err != nil {
		return sheet{}, err
	}
	var risks []models.Alert
	for _, a := range items {
		if a.Type == models.AlertTurnoverRisk {
			risks = append(risks, a)
		}
	}
	return sheet{
		name:      "Turnover alerts",
		headers:   alertHeaders,
		rows:      alertRows(risks),
		highlight: fmt.Sprintf("%d turnover risk alerts", len(risks)),
	}, nil
}

func journeySheet(ctx context.Context, repo repository.DashboardRepository, employeeID string) (sheet, error) {
	items, err := repo.ListJourneyEvents(ctx, employeeID)
	if err != nil {
		return sheet{}, err
	}
	s := sheet{
		name:      "Journey",
		headers:   []string{"ID", "Employee", "Type", "Date", "Title", "Manager", "Impact", "Status"},
		highlight: fmt.Sprintf("Average event impact %.2f", aggregates.Journey(items).AvgImpact),
	}
	for _, e := range items {
		s.rows = append(s.rows, []interface{}{e.ID, e.EmployeeID, string(e.Type), e.Date.Format(time.DateOnly),
			e.Title, e.Manager, e.ImpactScore, string(e.Status)})
	}
	return s, nil
}

func frictionsSheet(ctx context.Context, repo repository.DashboardRepository, employeeID string) (sheet, error) {
	items, err := repo.ListFrictions(ctx, employeeID)
	if err != nil {
		return sheet{}, err
	}
	sum := aggregates.Frictions(items)
	s := sheet{
		name:      "Frictions",
		headers:   []string{"ID", "Employee", "Type", "Severity", "Status", "Reported at", "Title", "Before", "After"},
		highlight: fmt.Sprintf("%d resolved, %d pending frictions", sum.Resolved, sum.Pending),
	}
	for _, f := range items {
		s.rows = append(s.rows, []interface{}{f.ID, f.EmployeeID, string(f.Type), string(f.Severity), string(f.Status),
			f.ReportedAt.Format(time.DateOnly), f.Title, f.SatisfactionBefore, f.SatisfactionAfter})
	}
	return s, nil
}

func milestonesSheet(ctx context.Context, repo repository.DashboardRepository, employeeID string) (sheet, error) {
	items, err := repo.ListMilestones(ctx, employeeID)
	if err != nil {
		return sheet{}, err
	}
	s := sheet{
		name:    "Milestones",
		headers: []string{"ID", "Employee", "Type", "Category", "Title", "Date", "Status", "Impact"},
	}
	for _, m := range items {
		s.rows = append(s.rows, []interface{}{m.ID, m.EmployeeID, string(m.Type), string(m.Category), m.Title,
			m.Date().Format(time.DateOnly), string(m.Status), m.EngagementImpact})
	}
	return s, nil
}

func librarySheet(ctx context.Context, repo repository.DashboardRepository, _ string) (sheet, error) {
	items, err := repo.ListActionTemplates(ctx)
	if err != nil {
		return sheet{}, err
	}
	sum := aggregates.Library(items)
	s := sheet{
		name:      "Action library",
		headers:   []string{"ID", "Name", "Category", "Subcategory", "Average cost", "Duration", "Success rate", "Usage", "Rating"},
		highlight: fmt.Sprintf("Average action success rate %.0f%%", sum.AvgSuccessRate*100),
	}
	for _, a := range items {
		s.rows = append(s.rows, []interface{}{a.ID, a.Name, string(a.Category), a.Subcategory, a.AverageCost,
			a.TypicalDuration, a.SuccessRate, a.UsageCount, a.Rating})
	}
	return s, nil
}

func casesSheet(ctx context.Context, repo repository.DashboardRepository, _ string) (sheet, error) {
	items, err := repo.ListCases(ctx)
	if err != nil {
		return sheet{}, err
	}
	s := sheet{
		name:      "Retention cases",
		headers:   []string{"ID", "Employee", "Department", "Risk", "Status", "Owner", "Opened at"},
		highlight: fmt.Sprintf("%d active retention cases", aggregates.Cases(items).Active),
	}
	for _, c := range items {
		s.rows = append(s.rows, []interface{}{c.ID, c.EmployeeName, c.Department, string(c.Risk), string(c.Status),
			c.Owner, c.OpenedAt.Format(time.DateOnly)})
	}
	return s, nil
}
